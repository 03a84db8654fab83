package copies

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"library-backend/internal/platform/apperr"
)

type Service struct {
	store *Store
	log   *zap.Logger
}

func NewService(conn *sql.DB, log *zap.Logger) *Service {
	return &Service{store: NewStore(conn), log: log}
}

func (s *Service) Get(ctx context.Context, copyID string) (CopyResponse, error) {
	if strings.TrimSpace(copyID) == "" {
		return CopyResponse{}, apperr.ErrInvalid("copy id is required")
	}
	c, err := s.store.Get(ctx, copyID)
	if err != nil {
		s.log.Error("get copy failed", zap.String("copy_id", copyID), zap.Error(err))
		return CopyResponse{}, apperr.ErrInternal("failed to get copy")
	}
	if c == nil {
		return CopyResponse{}, apperr.ErrNotFound("copy not found")
	}
	return c.toDTO(), nil
}

func (s *Service) ListByBook(ctx context.Context, bookID string) ([]CopyResponse, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, apperr.ErrInvalid("book id is required")
	}
	list, err := s.store.ListByBook(ctx, bookID)
	if err != nil {
		s.log.Error("list copies failed", zap.String("book_id", bookID), zap.Error(err))
		return nil, apperr.ErrInternal("failed to list copies")
	}
	out := make([]CopyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, c.toDTO())
	}
	return out, nil
}
