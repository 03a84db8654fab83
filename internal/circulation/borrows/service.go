package borrows

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"library-backend/internal/platform/apperr"
)

type Service struct {
	store *Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(conn *sql.DB, log *zap.Logger) *Service {
	return &Service{store: NewStore(conn), log: log, now: time.Now}
}

// ListMine: 本人の貸出履歴（未返却が先頭）
func (s *Service) ListMine(ctx context.Context, studentID, status string, p Page) (ListResult, error) {
	if strings.TrimSpace(studentID) == "" {
		return ListResult{}, apperr.ErrInvalid("student id is required")
	}
	var st *Condition
	if status != "" {
		c := Condition(status)
		if !c.Valid() {
			return ListResult{}, apperr.ErrInvalid("invalid status")
		}
		st = &c
	}
	if p.Page > MaxPage {
		return ListResult{}, apperr.ErrInvalid("page is too large")
	}
	p = normalizePage(p)

	rows, total, err := s.store.ListByStudent(ctx, studentID, st, p.Limit, (p.Page-1)*p.Limit)
	if err != nil {
		s.log.Error("list borrow records failed", zap.String("student_id", studentID), zap.Error(err))
		return ListResult{}, apperr.ErrInternal("failed to list borrow records")
	}

	today := dateOnly(s.now())
	items := make([]RecordResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.withOverdue(today).ToDTO())
	}
	return ListResult{
		Items:       items,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalResult: total,
		Total:       totalPages(total, p.Limit),
	}, nil
}

func (s *Service) GetMine(ctx context.Context, studentID, id string) (RecordResponse, error) {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(id) == "" {
		return RecordResponse{}, apperr.ErrInvalid("student id and record id are required")
	}
	r, err := s.store.GetForStudent(ctx, studentID, id)
	if err != nil {
		s.log.Error("get borrow record failed", zap.String("record_id", id), zap.Error(err))
		return RecordResponse{}, apperr.ErrInternal("failed to get borrow record")
	}
	if r == nil {
		return RecordResponse{}, apperr.ErrNotFound("borrow record not found")
	}
	return r.withOverdue(dateOnly(s.now())).ToDTO(), nil
}

func normalizePage(p Page) Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
