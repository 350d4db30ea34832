package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/ocr"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// maxUploadBytes caps OCR upload size at 20MB.
const maxUploadBytes = 20 << 20

// OCRHandler handles document text extraction uploads.
type OCRHandler struct {
	processor *ocr.Processor
	logger    *logger.Logger
}

// NewOCRHandler creates a new OCR handler.
func NewOCRHandler(processor *ocr.Processor, log *logger.Logger) *OCRHandler {
	return &OCRHandler{
		processor: processor,
		logger:    log,
	}
}

// Extract handles POST /api/ocr with a multipart "file" field.
func (h *OCRHandler) Extract(w http.ResponseWriter, r *http.Request) {
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
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	text, err := h.processor.ExtractFromBytes(header.Filename, data)
	if err != nil {
		h.logger.Error("text extraction failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeError(w, http.StatusUnprocessableEntity, "failed to extract text")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"text":     text,
	})
}
