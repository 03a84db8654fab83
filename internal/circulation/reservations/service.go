package reservations

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/text/width"

	"library-backend/internal/circulation/borrows"
	"library-backend/internal/circulation/copies"
	"library-backend/internal/platform/apperr"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	NewULID(t time.Time) string
	NewSecret() string
}
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func (ulidGen) NewSecret() string { return uuid.NewString() }

// ----------------------------------------

var errNoRowsAffected = errors.New("no rows affected")

type Service struct {
	tx       Transactor
	find     Finder
	log      *zap.Logger
	clock    Clock
	id       IDGen
	validate *validator.Validate
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option { return func(s *Service) { s.id = g } }

func NewService(conn *sql.DB, log *zap.Logger) *Service {
	return New(NewSQLTransactor(conn), NewSQLFinder(conn), log)
}

func New(tx Transactor, find Finder, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		tx:       tx,
		find:     find,
		log:      log,
		clock:    realClock{},
		id:       ulidGen{},
		validate: validator.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// POST /reservations/:id/cancel
func (s *Service) Cancel(ctx context.Context, requesterID, reservationID string) (ReservationResponse, error) {
	if strings.TrimSpace(requesterID) == "" || strings.TrimSpace(reservationID) == "" {
		return ReservationResponse{}, apperr.ErrInvalid("requester id and reservation id are required")
	}
	now := s.clock.Now()

	var out Reservation
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := ownedAwaiting(ctx, tx, requesterID, reservationID)
		if err != nil {
			return err
		}
		if err := expectOne(tx.TransitionReservation(ctx, r.ID, StatusAwaiting, StatusCanceled, now)); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		if err := expectOne(tx.SetCopyStatus(ctx, r.CopyID, copies.StatusAvailable, now)); err != nil {
			return fmt.Errorf("release copy %s: %w", r.CopyID, err)
		}
		r.Status, r.Index, r.UpdatedAt = StatusCanceled, StatusCanceled.index(), now
		out = *r
		return nil
	})
	if err != nil {
		return ReservationResponse{}, s.fail(err, "cancel", reservationID, requesterID)
	}
	return out.toDTO(copies.StatusAvailable), nil
}

// POST /reservations/:id/checkout
func (s *Service) Checkout(ctx context.Context, requesterID, reservationID string) (CheckoutResponse, error) {
	if strings.TrimSpace(requesterID) == "" || strings.TrimSpace(reservationID) == "" {
		return CheckoutResponse{}, apperr.ErrInvalid("requester id and reservation id are required")
	}
	now := s.clock.Now()
	today := midnightUTC(now)

	var (
		out Reservation
		rec *borrows.Record
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := ownedAwaiting(ctx, tx, requesterID, reservationID)
		if err != nil {
			return err
		}
		if r.Request == nil || r.Request.BorrowForDays <= 0 {
			return fmt.Errorf("reservation %s: originating request %q has no borrow duration", r.ID, r.RequestID)
		}

		// 予約の条件付き更新が同時実行に対する関門
		if err := expectOne(tx.TransitionReservation(ctx, r.ID, StatusAwaiting, StatusFulfilled, now)); err != nil {
			return fmt.Errorf("fulfill reservation: %w", err)
		}
		if err := expectOne(tx.SetCopyStatus(ctx, r.CopyID, copies.StatusCheckedOut, now)); err != nil {
			return fmt.Errorf("check out copy %s: %w", r.CopyID, err)
		}
		due := today.AddDate(0, 0, r.Request.BorrowForDays)
		rec = borrows.NewOngoing(s.id.NewULID(now), r.BookID, r.CopyID, r.StudentID, due, now)
		if err := tx.InsertBorrowRecord(ctx, rec); err != nil {
			return err
		}
		r.Status, r.Index, r.UpdatedAt = StatusFulfilled, StatusFulfilled.index(), now
		out = *r
		return nil
	})
	if err != nil {
		return CheckoutResponse{}, s.fail(err, "checkout", reservationID, requesterID)
	}
	return CheckoutResponse{
		Reservation:  out.toDTO(copies.StatusCheckedOut),
		BorrowRecord: rec.ToDTO(),
	}, nil
}

// POST /requests/:id/approve
// 申請を承認し、利用可能な1冊を確保して予約を作る。
func (s *Service) Approve(ctx context.Context, staffID, requestID string) (ReservationResponse, error) {
	if strings.TrimSpace(staffID) == "" || strings.TrimSpace(requestID) == "" {
		return ReservationResponse{}, apperr.ErrInvalid("staff id and request id are required")
	}
	now := s.clock.Now()

	var out Reservation
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Tx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.ErrNotFound("borrow request not found")
		}
		if req.Status != RequestPending {
			return apperr.ErrConflict("borrow request is " + string(req.Status))
		}
		if req.BorrowForDays <= 0 {
			return apperr.ErrInvalid("borrow request has no borrow duration")
		}

		c, err := tx.LockAvailableCopy(ctx, req.BookID)
		if apperr.Is(err, apperr.CodeNotFound) {
			return apperr.ErrConflict("no available copy for this book")
		}
		if err != nil {
			return err
		}

		if err := expectOne(tx.TransitionRequest(ctx, req.ID, RequestPending, RequestApproved, staffID, now)); err != nil {
			return fmt.Errorf("approve request: %w", err)
		}
		if err := expectOne(tx.SetCopyStatusFrom(ctx, c.ID, copies.StatusAvailable, copies.StatusReserved, now)); err != nil {
			return fmt.Errorf("reserve copy %s: %w", c.ID, err)
		}
		r := &Reservation{
			ID:        s.id.NewULID(now),
			BookID:    req.BookID,
			CopyID:    c.ID,
			StudentID: req.StudentID,
			RequestID: req.ID,
			Secret:    s.id.NewSecret(),
			Status:    StatusAwaiting,
			Index:     StatusAwaiting.index(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertReservation(ctx, r); err != nil {
			return err
		}
		out = *r
		return nil
	})
	if err != nil {
		return ReservationResponse{}, s.fail(err, "approve", requestID, staffID)
	}
	return out.toDTO(copies.StatusReserved), nil
}

// POST /reservations/:id/expire
// 期限切れは職員が明示的に確定させる（定期実行はしない）。
func (s *Service) Expire(ctx context.Context, staffID, reservationID string) (ReservationResponse, error) {
	if strings.TrimSpace(staffID) == "" || strings.TrimSpace(reservationID) == "" {
		return ReservationResponse{}, apperr.ErrInvalid("staff id and reservation id are required")
	}
	now := s.clock.Now()

	var out Reservation
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.ErrNotFound("reservation not found")
		}
		if err := requireAwaiting(r); err != nil {
			return err
		}
		if err := expectOne(tx.TransitionReservation(ctx, r.ID, StatusAwaiting, StatusExpired, now)); err != nil {
			return fmt.Errorf("expire reservation: %w", err)
		}
		if err := expectOne(tx.SetCopyStatus(ctx, r.CopyID, copies.StatusAvailable, now)); err != nil {
			return fmt.Errorf("release copy %s: %w", r.CopyID, err)
		}
		r.Status, r.Index, r.UpdatedAt = StatusExpired, StatusExpired.index(), now
		out = *r
		return nil
	})
	if err != nil {
		return ReservationResponse{}, s.fail(err, "expire", reservationID, staffID)
	}
	return out.toDTO(copies.StatusAvailable), nil
}

// GET /reservations
func (s *Service) ListForStaff(ctx context.Context, f StaffFilter, p Page) (ListResult, error) {
	f.Roll = fold(f.Roll)
	f.Secret = fold(f.Secret)
	f.Status = strings.TrimSpace(f.Status)
	if err := s.validate.Struct(f); err != nil {
		return ListResult{}, invalidFilter(err)
	}
	if err := s.validate.Struct(p); err != nil {
		return ListResult{}, invalidFilter(err)
	}
	p = normalizePage(p)

	// secret 指定時は完全一致の1件だけを返す
	if f.Secret != "" {
		v, err := s.find.GetBySecret(ctx, f.Secret)
		if err != nil {
			return ListResult{}, s.fail(err, "list", "", "")
		}
		if v == nil {
			return ListResult{}, apperr.ErrNotFound("reservation not found")
		}
		return ListResult{Items: []ReservationResponse{v.toDTO()}, Page: 1, Limit: p.Limit, TotalResult: 1, Total: 1}, nil
	}

	q := ListQuery{SortBy: p.SortBy, SortOrder: p.SortOrder, Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
	if f.Roll != "" {
		roll, err := strconv.Atoi(f.Roll)
		if err != nil {
			return ListResult{}, apperr.ErrInvalid("roll must be an integer")
		}
		q.Roll = &roll
	}
	if f.Status != "" {
		st := Status(f.Status)
		q.Status = &st
	}
	return s.list(ctx, q, p, "")
}

// GET /reservations/mine
func (s *Service) ListMine(ctx context.Context, requesterID string, f MineFilter, p Page) (ListResult, error) {
	if strings.TrimSpace(requesterID) == "" {
		return ListResult{}, apperr.ErrInvalid("requester id is required")
	}
	f.Status = strings.TrimSpace(f.Status)
	if err := s.validate.Struct(f); err != nil {
		return ListResult{}, invalidFilter(err)
	}
	if err := s.validate.Struct(p); err != nil {
		return ListResult{}, invalidFilter(err)
	}
	p = normalizePage(p)

	q := ListQuery{StudentID: requesterID, SortBy: p.SortBy, SortOrder: p.SortOrder, Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
	if f.Status != "" {
		st := Status(f.Status)
		q.Status = &st
	}
	return s.list(ctx, q, p, requesterID)
}

func (s *Service) list(ctx context.Context, q ListQuery, p Page, requesterID string) (ListResult, error) {
	rows, total, err := s.find.List(ctx, q)
	if err != nil {
		return ListResult{}, s.fail(err, "list", "", requesterID)
	}
	items := make([]ReservationResponse, 0, len(rows))
	for _, v := range rows {
		items = append(items, v.toDTO())
	}
	return ListResult{
		Items:       items,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalResult: total,
		Total:       totalPages(total, p.Limit),
	}, nil
}

// GET /reservations/:id
func (s *Service) GetByID(ctx context.Context, id string) (ReservationResponse, error) {
	if strings.TrimSpace(id) == "" {
		return ReservationResponse{}, apperr.ErrInvalid("reservation id is required")
	}
	v, err := s.find.Get(ctx, id)
	if err != nil {
		return ReservationResponse{}, s.fail(err, "get", id, "")
	}
	if v == nil {
		return ReservationResponse{}, apperr.ErrNotFound("reservation not found")
	}
	return v.toDTO(), nil
}

// GET /reservations/mine/:id
// 他人の予約は存在しないものとして扱う。
func (s *Service) GetMineByID(ctx context.Context, requesterID, id string) (ReservationResponse, error) {
	if strings.TrimSpace(requesterID) == "" || strings.TrimSpace(id) == "" {
		return ReservationResponse{}, apperr.ErrInvalid("requester id and reservation id are required")
	}
	v, err := s.find.Get(ctx, id)
	if err != nil {
		return ReservationResponse{}, s.fail(err, "get", id, requesterID)
	}
	if v == nil || v.StudentID != requesterID {
		return ReservationResponse{}, apperr.ErrNotFound("reservation not found")
	}
	return v.toDTO(), nil
}

// ---- helpers ----

func ownedAwaiting(ctx context.Context, tx Tx, requesterID, id string) (*Reservation, error) {
	r, err := tx.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.StudentID != requesterID {
		return nil, apperr.ErrNotFound("reservation not found")
	}
	if err := requireAwaiting(r); err != nil {
		return nil, err
	}
	return r, nil
}

func requireAwaiting(r *Reservation) error {
	switch r.Status {
	case StatusAwaiting:
		return nil
	case StatusCanceled:
		return apperr.ErrConflict("reservation already canceled")
	default:
		return apperr.ErrConflict("reservation is " + string(r.Status))
	}
}

// expectOne: 一致行数が 1 以外なら不変条件違反としてロールバックさせる
func expectOne(aff int64, err error) error {
	if err != nil {
		return err
	}
	if aff != 1 {
		return fmt.Errorf("%w: %d", errNoRowsAffected, aff)
	}
	return nil
}

// fail は *APIError をそのまま返し、それ以外は原因をログに残して Internal にする。
func (s *Service) fail(err error, op, id, actor string) error {
	var api *apperr.APIError
	if errors.As(err, &api) {
		return api
	}
	s.log.Error("reservation operation failed",
		zap.String("op", op),
		zap.String("reservation_id", id),
		zap.String("student_id", actor),
		zap.Error(err),
	)
	return apperr.ErrInternal("failed to " + op + " reservation")
}

func invalidFilter(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return apperr.ErrInvalid("invalid " + strings.ToLower(ve[0].Field()))
	}
	return apperr.ErrInvalid("invalid filter")
}

// fold は全角英数字を半角にそろえる（バーコード・手入力の両対応）
func fold(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
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
	if p.SortBy == "" {
		p.SortBy = DefaultSort
	}
	if p.SortOrder == "" {
		p.SortOrder = DefaultSortOrder
	}
	return p
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
