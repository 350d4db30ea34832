package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/ocr"
	"github.com/n0b0dy-ai/assistant-backend/internal/rag"
	"github.com/n0b0dy-ai/assistant-backend/internal/service"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// DocumentHandler handles vector index endpoints.
type DocumentHandler struct {
	index      *rag.Index
	assistant  *service.Assistant
	processor  *ocr.Processor
	windowSize int
	overlap    int
	logger     *logger.Logger
}

// NewDocumentHandler creates a new document handler. windowSize and overlap
// control chunking for file ingestion.
func NewDocumentHandler(index *rag.Index, assistant *service.Assistant, processor *ocr.Processor, windowSize, overlap int, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		index:      index,
		assistant:  assistant,
		processor:  processor,
		windowSize: windowSize,
		overlap:    overlap,
		logger:     log,
	}
}

type addDocumentsRequest struct {
	Texts     []string         `json:"texts"`
	Metadatas []map[string]any `json:"metadatas"`
}

// Add handles POST /api/documents
func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts list cannot be empty")
		return
	}
	if req.Metadatas != nil && len(req.Metadatas) != len(req.Texts) {
		writeError(w, http.StatusBadRequest, "metadatas length must match texts length")
		return
	}

	ids, err := h.index.Add(r.Context(), req.Texts, req.Metadatas)
	if err != nil {
		h.logger.Error("failed to index documents", zap.Error(err))
		if errors.Is(err, rag.ErrEmbedding) {
			writeError(w, http.StatusBadGateway, "embedding service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to index documents")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

// AddFile handles POST /api/documents/file with a multipart "file" field.
// PDFs and images go through text extraction first; anything else is treated
// as plain text. The content is chunked and indexed under the filename.
func (h *DocumentHandler) AddFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	text := string(data)
	if ocr.IsPDF(header.Filename, data) || isImage(header.Filename) {
		text, err = h.processor.ExtractFromBytes(header.Filename, data)
		if err != nil {
			h.logger.Error("text extraction failed",
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
			writeError(w, http.StatusUnprocessableEntity, "failed to extract text")
			return
		}
	}

	ids, err := h.index.AddChunked(r.Context(), header.Filename, text, h.windowSize, h.overlap)
	if err != nil {
		h.logger.Error("failed to index file", zap.Error(err))
		if errors.Is(err, rag.ErrEmbedding) {
			writeError(w, http.StatusBadGateway, "embedding service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to index file")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"source": header.Filename,
		"ids":    ids,
		"chunks": len(ids),
	})
}

func isImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".webp":
		return true
	}
	return false
}

// Stats handles GET /api/documents/stats
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.index.Stats())
}

type ragQueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

// Query handles POST /api/rag-query
func (h *DocumentHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req ragQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	reply, err := h.assistant.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		h.logger.Error("rag query failed", zap.Error(err))
		if errors.Is(err, rag.ErrEmbedding) {
			writeError(w, http.StatusBadGateway, "embedding service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to answer question")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
