package reservations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"library-backend/internal/circulation/borrows"
	"library-backend/internal/circulation/copies"
	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/db"
)

// Tx は1トランザクション内で3つのストアに触るための操作。
// 更新系は一致行数を返し、0 の扱いは呼び出し側が決める。
type Tx interface {
	GetReservation(ctx context.Context, id string) (*Reservation, error)
	TransitionReservation(ctx context.Context, id string, from, to Status, at time.Time) (int64, error)
	InsertReservation(ctx context.Context, r *Reservation) error

	GetRequestForUpdate(ctx context.Context, id string) (*Request, error)
	TransitionRequest(ctx context.Context, id string, from, to RequestStatus, staffID string, at time.Time) (int64, error)

	LockAvailableCopy(ctx context.Context, bookID string) (*copies.BookCopy, error)
	SetCopyStatus(ctx context.Context, copyID string, to copies.Status, at time.Time) (int64, error)
	SetCopyStatusFrom(ctx context.Context, copyID string, from, to copies.Status, at time.Time) (int64, error)

	InsertBorrowRecord(ctx context.Context, r *borrows.Record) error
}

// Transactor: fn が nil を返せば COMMIT、それ以外は ROLLBACK
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

const mysqlDuplicateEntry = 1062

type sqlTransactor struct{ db *sql.DB }

func NewSQLTransactor(conn *sql.DB) Transactor { return &sqlTransactor{db: conn} }

func (t *sqlTransactor) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return db.RunInTx(ctx, t.db, nil, func(ctx context.Context, q db.DBTX) error {
		return fn(ctx, &sqlTx{q: q})
	})
}

type sqlTx struct{ q db.DBTX }

func (t *sqlTx) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	return getWithRequestTx(ctx, t.q, id)
}

func (t *sqlTx) TransitionReservation(ctx context.Context, id string, from, to Status, at time.Time) (int64, error) {
	return transitionTx(ctx, t.q, id, from, to, at)
}

func (t *sqlTx) InsertReservation(ctx context.Context, r *Reservation) error {
	err := insertTx(ctx, t.q, r)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return apperr.ErrConflict("reservation already exists for this request")
	}
	return err
}

func (t *sqlTx) GetRequestForUpdate(ctx context.Context, id string) (*Request, error) {
	return getRequestForUpdateTx(ctx, t.q, id)
}

func (t *sqlTx) TransitionRequest(ctx context.Context, id string, from, to RequestStatus, staffID string, at time.Time) (int64, error) {
	return transitionRequestTx(ctx, t.q, id, from, to, staffID, at)
}

func (t *sqlTx) LockAvailableCopy(ctx context.Context, bookID string) (*copies.BookCopy, error) {
	return copies.LockAvailableTx(ctx, t.q, bookID)
}

func (t *sqlTx) SetCopyStatus(ctx context.Context, copyID string, to copies.Status, at time.Time) (int64, error) {
	return copies.SetStatusTx(ctx, t.q, copyID, to, at)
}

func (t *sqlTx) SetCopyStatusFrom(ctx context.Context, copyID string, from, to copies.Status, at time.Time) (int64, error) {
	return copies.SetStatusFromTx(ctx, t.q, copyID, from, to, at)
}

func (t *sqlTx) InsertBorrowRecord(ctx context.Context, r *borrows.Record) error {
	return borrows.InsertTx(ctx, t.q, r)
}
