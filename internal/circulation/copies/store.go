package copies

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/db"
)

const selectCopy = `SELECT copy_id, book_id, status, created_at, updated_at FROM book_copies`

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (s *Store) Get(ctx context.Context, copyID string) (*BookCopy, error) {
	return GetTx(ctx, s.db, copyID)
}

func (s *Store) ListByBook(ctx context.Context, bookID string) ([]BookCopy, error) {
	rows, err := s.db.QueryContext(ctx, selectCopy+` WHERE book_id = ? ORDER BY copy_id`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookCopy
	for rows.Next() {
		var c BookCopy
		if err := rows.Scan(&c.ID, &c.BookID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---- Tx 内で使う関数（q は *sql.Tx を想定） ----

// GetTx は見つからなければ nil, nil を返す。
func GetTx(ctx context.Context, q db.DBTX, copyID string) (*BookCopy, error) {
	var c BookCopy
	err := q.QueryRowContext(ctx, selectCopy+` WHERE copy_id = ?`, copyID).
		Scan(&c.ID, &c.BookID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LockAvailableTx は指定タイトルの利用可能な1冊を行ロックして返す。
func LockAvailableTx(ctx context.Context, q db.DBTX, bookID string) (*BookCopy, error) {
	const query = selectCopy + `
	WHERE book_id = ? AND status = ?
	ORDER BY copy_id
	LIMIT 1 FOR UPDATE`
	var c BookCopy
	err := q.QueryRowContext(ctx, query, bookID, StatusAvailable).
		Scan(&c.ID, &c.BookID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound("no available copy")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetStatusTx は copy_id 指定で状態を更新し、一致行数を返す。
func SetStatusTx(ctx context.Context, q db.DBTX, copyID string, to Status, at time.Time) (int64, error) {
	const query = `UPDATE book_copies SET status = ?, updated_at = ? WHERE copy_id = ?`
	res, err := q.ExecContext(ctx, query, to, at, copyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetStatusFromTx は現在の状態が from の場合だけ更新する（条件付き更新）。
func SetStatusFromTx(ctx context.Context, q db.DBTX, copyID string, from, to Status, at time.Time) (int64, error) {
	const query = `UPDATE book_copies SET status = ?, updated_at = ? WHERE copy_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, to, at, copyID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
