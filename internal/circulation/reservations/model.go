package reservations

import (
	"time"

	"library-backend/internal/circulation/copies"
)

type Status string

const (
	StatusAwaiting  Status = "awaiting"
	StatusFulfilled Status = "fulfilled"
	StatusCanceled  Status = "canceled"
	StatusExpired   Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAwaiting, StatusFulfilled, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusCanceled || s == StatusExpired
}

// index は一覧の第1ソートキー。未完了（awaiting）のものを先頭に出す。
func (s Status) index() int {
	if s == StatusAwaiting {
		return 1
	}
	return 0
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request は borrow_requests の1行（予約の発生元）
type Request struct {
	ID            string
	BookID        string
	StudentID     string
	BorrowForDays int
	Status        RequestStatus
}

// Reservation は reservations テーブルの1行
type Reservation struct {
	ID        string
	BookID    string
	CopyID    string
	StudentID string
	RequestID string
	Secret    string
	Status    Status
	Index     int
	CreatedAt time.Time
	UpdatedAt time.Time

	// 発生元の貸出申請（JOIN で取得、無ければ nil）
	Request *Request
}

// View は一覧・詳細用の JOIN 済みの行
type View struct {
	ID          string        `db:"reservation_id"`
	BookID      string        `db:"book_id"`
	CopyID      string        `db:"copy_id"`
	StudentID   string        `db:"student_id"`
	RequestID   string        `db:"request_id"`
	Secret      string        `db:"secret"`
	Status      Status        `db:"status"`
	Index       int           `db:"idx"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	StudentName string        `db:"student_name"`
	StudentRoll int           `db:"student_roll"`
	BookTitle   string        `db:"book_title"`
	CopyStatus  copies.Status `db:"copy_status"`
}
