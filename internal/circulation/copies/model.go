package copies

import "time"

type Status string

const (
	StatusAvailable  Status = "available"
	StatusCheckedOut Status = "checked_out"
	StatusReserved   Status = "reserved"
	StatusLost       Status = "lost"
	StatusDamaged    Status = "damaged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusCheckedOut, StatusReserved, StatusLost, StatusDamaged:
		return true
	}
	return false
}

// BookCopy は book_copies テーブルの1行（物理的な1冊）
type BookCopy struct {
	ID        string
	BookID    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CopyResponse struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c BookCopy) toDTO() CopyResponse {
	return CopyResponse{ID: c.ID, BookID: c.BookID, Status: c.Status, UpdatedAt: c.UpdatedAt}
}
