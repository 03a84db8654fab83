package borrows

import (
	"database/sql"
	"errors"
	"time"
)

// Condition は返却状態。return_condition と status の両カラムで同じ列挙を使う。
type Condition string

const (
	ConditionOngoing  Condition = "ongoing"
	ConditionReturned Condition = "returned"
	ConditionDamaged  Condition = "damaged"
	ConditionLost     Condition = "lost"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionOngoing, ConditionReturned, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

type ProcessedBy struct {
	StaffID   string    `json:"staffId"`
	Timestamp time.Time `json:"timestamp"`
}

// Record は borrow_records テーブルの1行
type Record struct {
	ID              string
	BookID          string
	CopyID          string
	StudentID       string
	DueDate         time.Time
	ReturnDate      sql.NullTime
	ReturnCondition Condition
	IsOverDue       bool
	OverDueDays     sql.NullInt64
	FineID          sql.NullString
	ReviewID        sql.NullString
	Status          Condition
	ProcessedBy     *ProcessedBy
	Index           int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var (
	ErrReturnDateWhileOngoing = errors.New("return date set while record is ongoing")
	ErrOverDueDaysWithoutFlag = errors.New("over due days present while not over due")
	ErrOverDueDaysRange       = errors.New("over due days must be >= 1")
	ErrInvalidCondition       = errors.New("invalid condition")
)

// NewOngoing は貸出開始時点のレコードを作る。
func NewOngoing(id, bookID, copyID, studentID string, due, now time.Time) *Record {
	return &Record{
		ID:              id,
		BookID:          bookID,
		CopyID:          copyID,
		StudentID:       studentID,
		DueDate:         due,
		ReturnCondition: ConditionOngoing,
		Status:          ConditionOngoing,
		Index:           1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (r *Record) Validate() error {
	if !r.Status.Valid() || !r.ReturnCondition.Valid() {
		return ErrInvalidCondition
	}
	if r.ReturnDate.Valid && r.Status == ConditionOngoing {
		return ErrReturnDateWhileOngoing
	}
	if r.OverDueDays.Valid {
		if !r.IsOverDue {
			return ErrOverDueDaysWithoutFlag
		}
		if r.OverDueDays.Int64 < 1 {
			return ErrOverDueDaysRange
		}
	}
	return nil
}

// withOverdue は未返却で期限切れのレコードに延滞日数を付けたコピーを返す（表示用、永続化しない）。
func (r Record) withOverdue(today time.Time) Record {
	if r.Status != ConditionOngoing || r.IsOverDue {
		return r
	}
	due := dateOnly(r.DueDate)
	if !today.After(due) {
		return r
	}
	days := int64(today.Sub(due).Hours() / 24)
	if days < 1 {
		return r
	}
	r.IsOverDue = true
	r.OverDueDays = sql.NullInt64{Int64: days, Valid: true}
	return r
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
