package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/platform/db"
)

// ---- Tx 内で使う関数（q は *sql.Tx を想定） ----

// getWithRequestTx は発生元の申請を含めて1件取得する。無ければ nil, nil。
func getWithRequestTx(ctx context.Context, q db.DBTX, id string) (*Reservation, error) {
	const query = `
	SELECT r.reservation_id, r.book_id, r.copy_id, r.student_id, r.request_id, r.secret,
	       r.status, r.idx, r.created_at, r.updated_at,
	       q.request_id, q.book_id, q.student_id, q.borrow_for_days, q.status
	FROM reservations r
	LEFT JOIN borrow_requests q ON q.request_id = r.request_id
	WHERE r.reservation_id = ?`

	var (
		r                                     Reservation
		reqID, reqBook, reqStudent, reqStatus sql.NullString
		reqDays                               sql.NullInt64
	)
	err := q.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.BookID, &r.CopyID, &r.StudentID, &r.RequestID, &r.Secret,
		&r.Status, &r.Index, &r.CreatedAt, &r.UpdatedAt,
		&reqID, &reqBook, &reqStudent, &reqDays, &reqStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reqID.Valid {
		r.Request = &Request{
			ID:            reqID.String,
			BookID:        reqBook.String,
			StudentID:     reqStudent.String,
			BorrowForDays: int(reqDays.Int64),
			Status:        RequestStatus(reqStatus.String),
		}
	}
	return &r, nil
}

// transitionTx は現在の状態が from の場合だけ to に進める。一致行数を返す。
func transitionTx(ctx context.Context, q db.DBTX, id string, from, to Status, at time.Time) (int64, error) {
	const query = `
	UPDATE reservations SET status = ?, idx = ?, updated_at = ?
	WHERE reservation_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, to, to.index(), at, id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertTx(ctx context.Context, q db.DBTX, r *Reservation) error {
	const query = `
	INSERT INTO reservations
	(reservation_id, book_id, copy_id, student_id, request_id, secret, status, idx, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		r.ID, r.BookID, r.CopyID, r.StudentID, r.RequestID, r.Secret,
		r.Status, r.Index, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return fmt.Errorf("insert reservation: %d rows affected", aff)
	}
	return nil
}

// getRequestForUpdateTx は申請行をロックして返す。無ければ nil, nil。
func getRequestForUpdateTx(ctx context.Context, q db.DBTX, id string) (*Request, error) {
	const query = `
	SELECT request_id, book_id, student_id, borrow_for_days, status
	FROM borrow_requests WHERE request_id = ? FOR UPDATE`
	var r Request
	err := q.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.BookID, &r.StudentID, &r.BorrowForDays, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func transitionRequestTx(ctx context.Context, q db.DBTX, id string, from, to RequestStatus, staffID string, at time.Time) (int64, error) {
	const query = `
	UPDATE borrow_requests SET status = ?, processed_by = ?, updated_at = ?
	WHERE request_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, to, staffID, at, id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
