package borrows

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/borrows/mine", h.ListMine)
	r.GET("/borrows/mine/:id", h.GetMine)
}

func (h *Handler) ListMine(c *gin.Context) {
	p := Page{
		Page:  parseIntDefault(c.Query("page"), 1),
		Limit: parseIntDefault(c.Query("limit"), DefaultPageLimit),
	}
	res, err := h.svc.ListMine(c.Request.Context(), auth.ProfileID(c), c.Query("status"), p)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetMine(c *gin.Context) {
	res, err := h.svc.GetMine(c.Request.Context(), auth.ProfileID(c), c.Param("id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
