package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/auth"
)

var testSecret = []byte("middleware-secret")

func signed(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", auth.RequireAuth(testSecret))
	g.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, auth.ProfileID(c)) })
	g.GET("/staff", auth.RequireRole(auth.RoleStaff), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Test_RequireAuth_SetsProfileID(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"sub": "alice", "profile_id": "student-1", "role": auth.RoleStudent,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, testSecret)

	w := do(newRouter(), "/me", "Bearer "+tok)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-1", w.Body.String())
}

func Test_RequireAuth_Rejects(t *testing.T) {
	valid := jwt.MapClaims{"sub": "alice", "profile_id": "student-1", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"sub": "alice", "profile_id": "student-1", "exp": time.Now().Add(-time.Hour).Unix()}
	noProfile := jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name  string
		authz string
	}{
		{name: "missing_header", authz: ""},
		{name: "not_bearer", authz: "Basic abc"},
		{name: "wrong_secret", authz: "Bearer " + signed(t, valid, jwt.SigningMethodHS256, []byte("other"))},
		{name: "expired", authz: "Bearer " + signed(t, expired, jwt.SigningMethodHS256, testSecret)},
		{name: "missing_profile", authz: "Bearer " + signed(t, noProfile, jwt.SigningMethodHS256, testSecret)},
		{name: "other_alg", authz: "Bearer " + signed(t, valid, jwt.SigningMethodHS512, testSecret)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newRouter(), "/me", tc.authz)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func Test_RequireRole(t *testing.T) {
	student := signed(t, jwt.MapClaims{
		"sub": "alice", "profile_id": "student-1", "role": auth.RoleStudent,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, testSecret)
	staff := signed(t, jwt.MapClaims{
		"sub": "bob", "profile_id": "staff-1", "role": auth.RoleStaff,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, testSecret)

	assert.Equal(t, http.StatusForbidden, do(newRouter(), "/staff", "Bearer "+student).Code)
	assert.Equal(t, http.StatusNoContent, do(newRouter(), "/staff", "Bearer "+staff).Code)
}
