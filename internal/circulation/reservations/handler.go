package reservations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// student: 本人の予約の参照・キャンセル・貸出
// staff: 全件の検索、申請の承認、期限切れ処理
func RegisterRoutes(student, staff gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	student.GET("/reservations/mine", h.ListMine)
	student.GET("/reservations/mine/:id", h.GetMine)
	student.POST("/reservations/:id/cancel", h.Cancel)
	student.POST("/reservations/:id/checkout", h.Checkout)

	staff.GET("/reservations", h.ListForStaff)
	staff.GET("/reservations/:id", h.Get)
	staff.POST("/requests/:id/approve", h.Approve)
	staff.POST("/reservations/:id/expire", h.Expire)
}

func (h *Handler) Cancel(c *gin.Context) {
	res, err := h.svc.Cancel(c.Request.Context(), auth.ProfileID(c), c.Param("id"))
	respond(c, http.StatusOK, res, err)
}

func (h *Handler) Checkout(c *gin.Context) {
	res, err := h.svc.Checkout(c.Request.Context(), auth.ProfileID(c), c.Param("id"))
	respond(c, http.StatusCreated, res, err)
}

func (h *Handler) Approve(c *gin.Context) {
	res, err := h.svc.Approve(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Param("id"))
	respond(c, http.StatusCreated, res, err)
}

func (h *Handler) Expire(c *gin.Context) {
	res, err := h.svc.Expire(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Param("id"))
	respond(c, http.StatusOK, res, err)
}

// GET /reservations?roll=&secret=&status=&page=&limit=&sort_by=&sort_order=
func (h *Handler) ListForStaff(c *gin.Context) {
	f := StaffFilter{
		Roll:   c.Query("roll"),
		Secret: c.Query("secret"),
		Status: c.Query("status"),
	}
	res, err := h.svc.ListForStaff(c.Request.Context(), f, pageFromQuery(c))
	respond(c, http.StatusOK, res, err)
}

func (h *Handler) ListMine(c *gin.Context) {
	f := MineFilter{Status: c.Query("status")}
	res, err := h.svc.ListMine(c.Request.Context(), auth.ProfileID(c), f, pageFromQuery(c))
	respond(c, http.StatusOK, res, err)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, res, err)
}

func (h *Handler) GetMine(c *gin.Context) {
	res, err := h.svc.GetMineByID(c.Request.Context(), auth.ProfileID(c), c.Param("id"))
	respond(c, http.StatusOK, res, err)
}

func respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(status, body)
}

func pageFromQuery(c *gin.Context) Page {
	return Page{
		Page:      parseIntDefault(c.Query("page"), 1),
		Limit:     parseIntDefault(c.Query("limit"), DefaultPageLimit),
		SortBy:    c.DefaultQuery("sort_by", DefaultSort),
		SortOrder: c.DefaultQuery("sort_order", DefaultSortOrder),
	}
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
