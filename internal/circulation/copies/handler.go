package copies

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

// staff 用の参照 API
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/copies/:copy_id", h.GetCopy)
	r.GET("/books/:book_id/copies", h.ListByBook)
}

func (h *Handler) GetCopy(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("copy_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListByBook(c *gin.Context) {
	res, err := h.svc.ListByBook(c.Request.Context(), c.Param("book_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res, "total": len(res)})
}
