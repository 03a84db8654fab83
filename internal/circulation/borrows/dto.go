package borrows

import "time"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxPage          = 1000000 // OFFSET のオーバーフロー防止
	DateLayout       = "2006-01-02"
)

type Page struct {
	Page  int
	Limit int
}

type RecordResponse struct {
	ID              string       `json:"id"`
	BookID          string       `json:"book_id"`
	CopyID          string       `json:"copy_id"`
	StudentID       string       `json:"student_id"`
	DueDate         string       `json:"due_date"` // YYYY-MM-DD
	ReturnDate      *time.Time   `json:"return_date"`
	ReturnCondition Condition    `json:"return_condition"`
	IsOverDue       bool         `json:"is_over_due"`
	OverDueDays     *int64       `json:"over_due_days"`
	FineID          *string      `json:"fine_id"`
	ReviewID        *string      `json:"review_id"`
	Status          Condition    `json:"status"`
	ProcessedBy     *ProcessedBy `json:"processed_by"`
	Index           int          `json:"index"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type ListResult struct {
	Items       []RecordResponse `json:"results"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalResult int64            `json:"totalResult"`
	Total       int              `json:"total"`
}

func (r Record) ToDTO() RecordResponse {
	resp := RecordResponse{
		ID:              r.ID,
		BookID:          r.BookID,
		CopyID:          r.CopyID,
		StudentID:       r.StudentID,
		DueDate:         r.DueDate.UTC().Format(DateLayout),
		ReturnCondition: r.ReturnCondition,
		IsOverDue:       r.IsOverDue,
		Status:          r.Status,
		ProcessedBy:     r.ProcessedBy,
		Index:           r.Index,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ReturnDate.Valid {
		v := r.ReturnDate.Time
		resp.ReturnDate = &v
	}
	if r.OverDueDays.Valid {
		v := r.OverDueDays.Int64
		resp.OverDueDays = &v
	}
	if r.FineID.Valid {
		v := r.FineID.String
		resp.FineID = &v
	}
	if r.ReviewID.Valid {
		v := r.ReviewID.String
		resp.ReviewID = &v
	}
	return resp
}
