package borrows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"library-backend/internal/platform/db"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const selectRecord = `
	SELECT record_id, book_id, copy_id, student_id, due_date, return_date, return_condition,
	       is_over_due, over_due_days, fine_id, review_id, status, processed_by, idx, created_at, updated_at
	FROM borrow_records`

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// InsertTx は貸出レコードを1件追加する。不変条件に反するレコードは書き込まない。
func InsertTx(ctx context.Context, q db.DBTX, r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("borrow record %s: %w", r.ID, err)
	}
	processedBy, err := encodeProcessedBy(r.ProcessedBy)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO borrow_records
	(record_id, book_id, copy_id, student_id, due_date, return_date, return_condition,
	 is_over_due, over_due_days, fine_id, review_id, status, processed_by, idx, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		r.ID, r.BookID, r.CopyID, r.StudentID,
		r.DueDate.UTC().Format(DateLayout),
		r.ReturnDate, r.ReturnCondition,
		r.IsOverDue, r.OverDueDays, r.FineID, r.ReviewID,
		r.Status, processedBy, r.Index, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return fmt.Errorf("insert borrow record: %d rows affected", aff)
	}
	return nil
}

// GetForStudent は本人のレコードだけを返す。無ければ nil, nil。
func (s *Store) GetForStudent(ctx context.Context, studentID, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE record_id = ? AND student_id = ?`, id, studentID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ListByStudent は件数とページを同じ読み取り専用 Tx で取る。
func (s *Store) ListByStudent(ctx context.Context, studentID string, status *Condition, limit, offset int) ([]Record, int64, error) {
	wheres := []string{"student_id = ?"}
	args := []any{studentID}
	if status != nil {
		wheres = append(wheres, "status = ?")
		args = append(args, *status)
	}
	where := " WHERE " + strings.Join(wheres, " AND ")

	var (
		out   []Record
		total int64
	)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, q db.DBTX) error {
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrow_records`+where, args...).Scan(&total); err != nil {
			return err
		}

		query := selectRecord + where + ` ORDER BY idx DESC, created_at DESC, record_id ASC LIMIT ? OFFSET ?`
		rows, err := q.QueryContext(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				return err
			}
			out = append(out, *r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		r           Record
		processedBy []byte
	)
	if err := sc.Scan(
		&r.ID, &r.BookID, &r.CopyID, &r.StudentID, &r.DueDate, &r.ReturnDate, &r.ReturnCondition,
		&r.IsOverDue, &r.OverDueDays, &r.FineID, &r.ReviewID, &r.Status, &processedBy, &r.Index,
		&r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	pb, err := decodeProcessedBy(processedBy)
	if err != nil {
		return nil, err
	}
	r.ProcessedBy = pb
	return &r, nil
}

func encodeProcessedBy(p *ProcessedBy) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode processed_by: %w", err)
	}
	return string(b), nil
}

func decodeProcessedBy(b []byte) (*ProcessedBy, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var p ProcessedBy
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode processed_by: %w", err)
	}
	return &p, nil
}
