package copies_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/circulation/copies"
	"library-backend/internal/platform/apperr"
)

var copyCols = []string{"copy_id", "book_id", "status", "created_at", "updated_at"}

func Test_SetStatusFromTx_ReportsZeroWhenStatusMoved(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE book_copies SET status = ?, updated_at = ? WHERE copy_id = ? AND status = ?`)).
		WithArgs("reserved", at, "C1", "available").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := copies.SetStatusFromTx(context.Background(), conn, "C1", copies.StatusAvailable, copies.StatusReserved, at)

	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SetStatusTx(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE book_copies SET status = ?, updated_at = ? WHERE copy_id = ?`)).
		WithArgs("checked_out", at, "C1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := copies.SetStatusTx(context.Background(), conn, "C1", copies.StatusCheckedOut, at)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_LockAvailableTx(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("B1", "available").
		WillReturnRows(sqlmock.NewRows(copyCols).AddRow("C1", "B1", "available", now, now))
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("B2", "available").
		WillReturnRows(sqlmock.NewRows(copyCols))

	c, err := copies.LockAvailableTx(context.Background(), conn, "B1")
	require.NoError(t, err)
	assert.Equal(t, "C1", c.ID)
	assert.Equal(t, copies.StatusAvailable, c.Status)

	_, err = copies.LockAvailableTx(context.Background(), conn, "B2")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetTx_Missing(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`FROM book_copies WHERE copy_id`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(copyCols))

	c, err := copies.GetTx(context.Background(), conn, "nope")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func Test_Status_Valid(t *testing.T) {
	for _, s := range []copies.Status{
		copies.StatusAvailable, copies.StatusCheckedOut, copies.StatusReserved, copies.StatusLost, copies.StatusDamaged,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, copies.Status("borrowed").Valid())
}
