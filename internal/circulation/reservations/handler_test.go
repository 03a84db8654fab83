package reservations_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/circulation/copies"
	"library-backend/internal/circulation/reservations"
	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
)

func newRouter(svc *reservations.Service, profileID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(auth.CtxUserIDKey, "staff-1")
		c.Set(auth.CtxProfileIDKey, profileID)
		c.Next()
	})
	reservations.RegisterRoutes(g, g, svc)
	return r
}

func Test_Handler_CancelTwice_Forbidden(t *testing.T) {
	m := newMemStore()
	seed(m, reservations.StatusAwaiting, copies.StatusReserved)
	r := newRouter(newSvc(m, nil), "stu-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reservations/res-1/cancel", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reservations/res-1/cancel", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), string(apperr.CodeConflict))
	assert.Contains(t, w.Body.String(), "reservation already canceled")
}

func Test_Handler_Checkout_Created(t *testing.T) {
	m := newMemStore()
	seed(m, reservations.StatusAwaiting, copies.StatusReserved)
	r := newRouter(newSvc(m, nil), "stu-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reservations/res-1/checkout", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"due_date":"2024-01-24"`)
}

func Test_Handler_ListBadStatus_BadRequest(t *testing.T) {
	f := &fakeFinder{}
	r := newRouter(newSvc(newMemStore(), f), "stu-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations?status=borrowed", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations/mine/res-1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, f.calls)
}
