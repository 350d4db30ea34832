package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// ErrNotFound reports a lookup for a record that does not exist.
var ErrNotFound = errors.New("record not found")

// Store manages the Title -> Chat -> Context hierarchy. Every Chat belongs
// to a Title and every Context belongs to a Chat; deletes cascade so no
// orphaned descendants survive.
type Store struct {
	titles   Collection
	chats    Collection
	contexts Collection
	logger   *logger.Logger
}

// NewStore wires the three record collections.
func NewStore(titles, chats, contexts Collection, log *logger.Logger) *Store {
	return &Store{
		titles:   titles,
		chats:    chats,
		contexts: contexts,
		logger:   log,
	}
}

// NewStoreFromDatabase builds a Store over the conventional collection names.
func NewStoreFromDatabase(db *mongo.Database, log *logger.Logger) *Store {
	return NewStore(
		WrapCollection(db.Collection("titles")),
		WrapCollection(db.Collection("chats")),
		WrapCollection(db.Collection("contexts")),
		log,
	)
}

// CreateTitle inserts a new titled thread root.
func (s *Store) CreateTitle(ctx context.Context, title string) (model.Title, error) {
	now := time.Now().UTC()
	t := model.Title{
		IDTitle:    uuid.NewString(),
		Title:      title,
		CreateAt:   now,
		LastUpdate: now,
	}
	if err := s.titles.InsertOne(ctx, t); err != nil {
		return model.Title{}, fmt.Errorf("failed to insert title: %w", err)
	}
	return t, nil
}

// GetTitle returns one title by id.
func (s *Store) GetTitle(ctx context.Context, idTitle string) (model.Title, error) {
	var t model.Title
	if err := s.titles.FindOne(ctx, bson.M{"id_title": idTitle}, &t); err != nil {
		return model.Title{}, err
	}
	return t, nil
}

// ListTitles returns titles sorted by most recent activity. Limit and skip
// page through the result; a non-positive limit returns everything.
func (s *Store) ListTitles(ctx context.Context, limit, skip int64) ([]model.Title, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_update", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	if skip > 0 {
		opts = opts.SetSkip(skip)
	}

	titles := []model.Title{}
	if err := s.titles.FindAll(ctx, bson.M{}, opts, &titles); err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, nil
}

// UpdateTitle renames the title and bumps its last_update.
func (s *Store) UpdateTitle(ctx context.Context, idTitle, title string) error {
	matched, err := s.titles.UpdateOne(ctx,
		bson.M{"id_title": idTitle},
		bson.M{"$set": bson.M{"title": title, "last_update": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTitle removes the title and everything beneath it. Descendants go
// first so a crash mid-cascade can only leave the still-reachable title
// behind, never unreachable chats or contexts.
func (s *Store) DeleteTitle(ctx context.Context, idTitle string) error {
	if _, err := s.GetTitle(ctx, idTitle); err != nil {
		return err
	}

	chats, err := s.ChatsByTitle(ctx, idTitle, 0)
	if err != nil {
		return err
	}
	for _, chat := range chats {
		if _, err := s.contexts.DeleteMany(ctx, bson.M{"id_chat": chat.IDChat}); err != nil {
			return fmt.Errorf("failed to delete contexts of chat %s: %w", chat.IDChat, err)
		}
	}
	if _, err := s.chats.DeleteMany(ctx, bson.M{"id_title": idTitle}); err != nil {
		return fmt.Errorf("failed to delete chats of title %s: %w", idTitle, err)
	}
	deleted, err := s.titles.DeleteOne(ctx, bson.M{"id_title": idTitle})
	if err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	metrics.CascadeDeletesTotal.WithLabelValues("title").Inc()
	s.logger.Info("title deleted with descendants",
		zap.String("id_title", idTitle),
		zap.Int("chats", len(chats)),
	)
	return nil
}

// CreateChat inserts a chat under an existing title and touches the title.
func (s *Store) CreateChat(ctx context.Context, idTitle string) (model.Chat, error) {
	if _, err := s.GetTitle(ctx, idTitle); err != nil {
		return model.Chat{}, err
	}

	chat := model.Chat{
		IDChat:   uuid.NewString(),
		IDTitle:  idTitle,
		CreateAt: time.Now().UTC(),
	}
	if err := s.chats.InsertOne(ctx, chat); err != nil {
		return model.Chat{}, fmt.Errorf("failed to insert chat: %w", err)
	}
	if err := s.touchTitle(ctx, idTitle); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// GetChat returns one chat by id.
func (s *Store) GetChat(ctx context.Context, idChat string) (model.Chat, error) {
	var chat model.Chat
	if err := s.chats.FindOne(ctx, bson.M{"id_chat": idChat}, &chat); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// ChatsByTitle returns chats under the title, capped at limit when positive.
func (s *Store) ChatsByTitle(ctx context.Context, idTitle string, limit int64) ([]model.Chat, error) {
	var opts *options.FindOptions
	if limit > 0 {
		opts = options.Find().SetLimit(limit)
	}
	chats := []model.Chat{}
	if err := s.chats.FindAll(ctx, bson.M{"id_title": idTitle}, opts, &chats); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// DeleteChat removes the chat and its contexts, contexts first.
func (s *Store) DeleteChat(ctx context.Context, idChat string) error {
	chat, err := s.GetChat(ctx, idChat)
	if err != nil {
		return err
	}

	if _, err := s.contexts.DeleteMany(ctx, bson.M{"id_chat": idChat}); err != nil {
		return fmt.Errorf("failed to delete contexts of chat %s: %w", idChat, err)
	}
	deleted, err := s.chats.DeleteOne(ctx, bson.M{"id_chat": idChat})
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	metrics.CascadeDeletesTotal.WithLabelValues("chat").Inc()
	return s.touchTitle(ctx, chat.IDTitle)
}

// CreateContext inserts a context payload under an existing chat and touches
// the owning title.
func (s *Store) CreateContext(ctx context.Context, idChat string, payload map[string]any) (model.Context, error) {
	chat, err := s.GetChat(ctx, idChat)
	if err != nil {
		return model.Context{}, err
	}

	c := model.Context{
		IDContext: uuid.NewString(),
		IDChat:    idChat,
		CreateAt:  time.Now().UTC(),
		Context:   payload,
	}
	if err := s.contexts.InsertOne(ctx, c); err != nil {
		return model.Context{}, fmt.Errorf("failed to insert context: %w", err)
	}
	if err := s.touchTitle(ctx, chat.IDTitle); err != nil {
		return model.Context{}, err
	}
	return c, nil
}

// GetContext returns one context by id.
func (s *Store) GetContext(ctx context.Context, idContext string) (model.Context, error) {
	var c model.Context
	if err := s.contexts.FindOne(ctx, bson.M{"id_context": idContext}, &c); err != nil {
		return model.Context{}, err
	}
	return c, nil
}

// ContextsByChat returns contexts under the chat, capped at limit when positive.
func (s *Store) ContextsByChat(ctx context.Context, idChat string, limit int64) ([]model.Context, error) {
	var opts *options.FindOptions
	if limit > 0 {
		opts = options.Find().SetLimit(limit)
	}
	contexts := []model.Context{}
	if err := s.contexts.FindAll(ctx, bson.M{"id_chat": idChat}, opts, &contexts); err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	return contexts, nil
}

// UpdateContext replaces the context payload and touches the owning title.
func (s *Store) UpdateContext(ctx context.Context, idContext string, payload map[string]any) error {
	c, err := s.GetContext(ctx, idContext)
	if err != nil {
		return err
	}

	matched, err := s.contexts.UpdateOne(ctx,
		bson.M{"id_context": idContext},
		bson.M{"$set": bson.M{"context": payload}},
	)
	if err != nil {
		return fmt.Errorf("failed to update context: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}

	chat, err := s.GetChat(ctx, c.IDChat)
	if err != nil {
		return err
	}
	return s.touchTitle(ctx, chat.IDTitle)
}

// DeleteContext removes one context.
func (s *Store) DeleteContext(ctx context.Context, idContext string) error {
	deleted, err := s.contexts.DeleteOne(ctx, bson.M{"id_context": idContext})
	if err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	metrics.CascadeDeletesTotal.WithLabelValues("context").Inc()
	return nil
}

func (s *Store) touchTitle(ctx context.Context, idTitle string) error {
	_, err := s.titles.UpdateOne(ctx,
		bson.M{"id_title": idTitle},
		bson.M{"$set": bson.M{"last_update": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to touch title %s: %w", idTitle, err)
	}
	return nil
}
