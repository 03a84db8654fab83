package reservations

import (
	"time"

	"library-backend/internal/circulation/borrows"
	"library-backend/internal/circulation/copies"
)

const (
	SortCreatedAt    = "createdAt"
	SortUpdatedAt    = "updatedAt"
	SortStatus       = "status"
	DefaultSort      = SortCreatedAt
	DefaultSortOrder = "desc"
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxPage          = 1000000 // OFFSET のオーバーフロー防止（validate タグと揃える）
)

// StaffFilter: 職員用一覧の検索条件（入力はそのままの文字列で受ける）
type StaffFilter struct {
	Roll   string `validate:"omitempty,number"`
	Secret string
	Status string `validate:"omitempty,oneof=awaiting fulfilled canceled expired"`
}

// MineFilter: 学生本人用一覧の検索条件
type MineFilter struct {
	Status string `validate:"omitempty,oneof=awaiting fulfilled canceled expired"`
}

type Page struct {
	Page      int    `validate:"gte=0,lte=1000000"`
	Limit     int    `validate:"gte=0"`
	SortBy    string `validate:"omitempty,oneof=createdAt updatedAt status"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

type StudentRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Roll int    `json:"roll,omitempty"`
}

type BookRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type CopyRef struct {
	ID     string        `json:"id"`
	Status copies.Status `json:"status,omitempty"`
}

type ReservationResponse struct {
	ID        string     `json:"id"`
	Student   StudentRef `json:"student"`
	Book      BookRef    `json:"book"`
	Copy      CopyRef    `json:"copy"`
	RequestID string     `json:"request_id"`
	Secret    string     `json:"secret"`
	Status    Status     `json:"status"`
	Index     int        `json:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ListResult struct {
	Items       []ReservationResponse `json:"results"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalResult int64                 `json:"totalResult"`
	Total       int                   `json:"total"`
}

type CheckoutResponse struct {
	Reservation  ReservationResponse    `json:"reservation"`
	BorrowRecord borrows.RecordResponse `json:"borrow_record"`
}

func (v View) toDTO() ReservationResponse {
	return ReservationResponse{
		ID:        v.ID,
		Student:   StudentRef{ID: v.StudentID, Name: v.StudentName, Roll: v.StudentRoll},
		Book:      BookRef{ID: v.BookID, Title: v.BookTitle},
		Copy:      CopyRef{ID: v.CopyID, Status: v.CopyStatus},
		RequestID: v.RequestID,
		Secret:    v.Secret,
		Status:    v.Status,
		Index:     v.Index,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// toDTO: Tx 内で確定した値から作る（JOIN 情報は ID のみ）
func (r Reservation) toDTO(copyStatus copies.Status) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Student:   StudentRef{ID: r.StudentID},
		Book:      BookRef{ID: r.BookID},
		Copy:      CopyRef{ID: r.CopyID, Status: copyStatus},
		RequestID: r.RequestID,
		Secret:    r.Secret,
		Status:    r.Status,
		Index:     r.Index,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
