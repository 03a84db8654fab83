package reservations_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-backend/internal/circulation/reservations"
	"library-backend/internal/platform/apperr"
)

var reservationCols = []string{
	"reservation_id", "book_id", "copy_id", "student_id", "request_id", "secret",
	"status", "idx", "created_at", "updated_at",
	"request_id", "book_id", "student_id", "borrow_for_days", "status",
}

func sqlSvc(t *testing.T) (*reservations.Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	svc := reservations.New(
		reservations.NewSQLTransactor(conn),
		reservations.NewSQLFinder(conn),
		zap.NewNop(),
		reservations.WithClock(fixedClock{t: callTime}),
		reservations.WithIDGen(&seqIDs{}),
	)
	return svc, mock
}

func awaitingRow() *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(
		"res-1", "book-1", "copy-1", "stu-1", "req-1", "s-1",
		"awaiting", 1, callTime, callTime,
		"req-1", "book-1", "stu-1", 14, "approved",
	)
}

func Test_SQL_Checkout_Commits(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r\s+LEFT JOIN borrow_requests`).WithArgs("res-1").WillReturnRows(awaitingRow())
	mock.ExpectExec(`UPDATE reservations SET status`).
		WithArgs(reservations.StatusFulfilled, 0, callTime, "res-1", reservations.StatusAwaiting).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE book_copies SET status`).
		WithArgs("checked_out", callTime, "copy-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO borrow_records`).
		WithArgs("id-1", "book-1", "copy-1", "stu-1", "2024-01-24", nil, "ongoing",
			false, nil, nil, nil, "ongoing", nil, 1, callTime, callTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Checkout(context.Background(), "stu-1", "res-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-24", res.BorrowRecord.DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SQL_Checkout_ZeroRows_RollsBack(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r\s+LEFT JOIN borrow_requests`).WithArgs("res-1").WillReturnRows(awaitingRow())
	mock.ExpectExec(`UPDATE reservations SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Checkout(context.Background(), "stu-1", "res-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SQL_Cancel_CopyZeroRows_RollsBack(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r\s+LEFT JOIN borrow_requests`).WithArgs("res-1").WillReturnRows(awaitingRow())
	mock.ExpectExec(`UPDATE reservations SET status`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE book_copies SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), "stu-1", "res-1")
	assert.True(t, apperr.Is(err, apperr.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SQL_Approve_DuplicateReservation_Conflict(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM borrow_requests WHERE request_id = \? FOR UPDATE`).WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "book_id", "student_id", "borrow_for_days", "status"}).
			AddRow("req-1", "book-1", "stu-1", 14, "pending"))
	mock.ExpectQuery(`FROM book_copies\s+WHERE book_id = \? AND status = \?`).WithArgs("book-1", "available").
		WillReturnRows(sqlmock.NewRows([]string{"copy_id", "book_id", "status", "created_at", "updated_at"}).
			AddRow("copy-1", "book-1", "available", callTime, callTime))
	mock.ExpectExec(`UPDATE borrow_requests SET status`).
		WithArgs("approved", "staff-1", callTime, "req-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE book_copies SET status = \?, updated_at = \? WHERE copy_id = \? AND status = \?`).
		WithArgs("reserved", callTime, "copy-1", "available").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservations`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'req-1'"})
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), "staff-1", "req-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var viewCols = []string{
	"reservation_id", "book_id", "copy_id", "student_id", "request_id", "secret",
	"status", "idx", "created_at", "updated_at",
	"student_name", "student_roll", "book_title", "copy_status",
}

func Test_SQL_ListForStaff_BuildsJoinedQuery(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `reservations` AS `r` INNER JOIN `students` AS `s`")).
		WithArgs(1024, "awaiting").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY `r`.`idx` DESC, `r`.`updated_at` ASC, `r`.`reservation_id` ASC")).
		WillReturnRows(sqlmock.NewRows(viewCols).AddRow(
			"res-1", "book-1", "copy-1", "stu-1", "req-1", "s-1",
			"awaiting", 1, callTime, callTime,
			"Hanako", 1024, "Go Programming", "reserved",
		))

	res, err := svc.ListForStaff(context.Background(),
		reservations.StaffFilter{Roll: "1024", Status: "awaiting"},
		reservations.Page{Page: 2, Limit: 10, SortBy: "updatedAt", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	it := res.Items[0]
	assert.Equal(t, "Hanako", it.Student.Name)
	assert.Equal(t, 1024, it.Student.Roll)
	assert.Equal(t, "Go Programming", it.Book.Title)
	assert.Equal(t, "reserved", string(it.Copy.Status))
	assert.Equal(t, int64(11), res.TotalResult)
	assert.Equal(t, 2, res.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SQL_GetMineByID_NoRow_NotFound(t *testing.T) {
	svc, mock := sqlSvc(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (`r`.`reservation_id` = ?)")).
		WillReturnRows(sqlmock.NewRows(viewCols))

	_, err := svc.GetMineByID(context.Background(), "stu-1", "res-9")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
