package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"library-backend/internal/platform/apperr"
)

const (
	CtxUserIDKey    = "user_id"
	CtxProfileIDKey = "profile_id"
	CtxRoleKey      = "role"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, http.StatusUnauthorized, msg))
}

func forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, apperr.Body(apperr.CodeForbidden, http.StatusForbidden, msg))
}

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/profile_id/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			unauthorized(c, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			unauthorized(c, "empty token")
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || token == nil || !token.Valid {
			unauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "invalid claims")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			unauthorized(c, "invalid sub")
			return
		}
		profileID, _ := claims["profile_id"].(string)
		if profileID == "" {
			unauthorized(c, "missing profile_id")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(CtxUserIDKey, sub)
		c.Set(CtxProfileIDKey, profileID)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// RequireRole: 例) staff のみ許可したい時に追加
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if role == "" {
			forbidden(c, "missing role")
			return
		}
		if _, allowed := roleSet[role]; !allowed {
			forbidden(c, "forbidden")
			return
		}
		c.Next()
	}
}

// ProfileID は認証済みユーザーのプロフィールID（学生ID / 職員ID）を返す。
func ProfileID(c *gin.Context) string {
	return c.GetString(CtxProfileIDKey)
}
