package menu

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/menu/groups", authMW)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	g.POST("/reorder", h.reorder)
	g.PUT("/order", h.saveOrder)
	g.PUT("/layout", h.saveLayout)

	g.PATCH("/:id/stock", h.setStock)
	g.PATCH("/:id/active", h.setActive)
}

// GET /menu/groups
func (h *Handler) list(c *gin.Context) {
	groups, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = toView(g)
	}
	response.OK(c, out)
}

// POST /menu/groups
func (h *Handler) create(c *gin.Context) {
	var dto CreateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, res := h.svc.Create(c.Request.Context(), &dto)
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, toView(*g))
}

// PATCH /menu/groups/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, res, err := h.svc.Rename(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, toView(*g))
}

// DELETE /menu/groups/:id
func (h *Handler) delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /menu/groups/reorder: local move, committed later by PUT /order
func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	moved, err := h.svc.Reorder(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	groups, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = toView(g)
	}
	response.OK(c, gin.H{"moved": moved, "groups": out})
}

// PUT /menu/groups/order
func (h *Handler) saveOrder(c *gin.Context) {
	writeResult(c, h.svc.SaveOrder(c.Request.Context()), nil)
}

// PUT /menu/groups/layout: group order + dirty category partitions
func (h *Handler) saveLayout(c *gin.Context) {
	report := h.svc.SaveLayout(c.Request.Context())
	if !report.OK() {
		response.Warning(c, "some changes could not be saved", report)
		return
	}
	response.OK(c, report)
}

// PATCH /menu/groups/:id/stock
func (h *Handler) setStock(c *gin.Context) {
	var dto StockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetStock(c.Request.Context(), c.Param("id"), *dto.InStock), nil)
}

// PATCH /menu/groups/:id/active
func (h *Handler) setActive(c *gin.Context) {
	var dto ActiveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetActive(c.Request.Context(), c.Param("id"), *dto.IsActive), nil)
}

// writeResult maps a mutation outcome to the envelope. Rejections keep HTTP
// 200 with status:false, mirroring the upstream contract.
func writeResult(c *gin.Context, res optimistic.Result, data interface{}) {
	if res.OK {
		response.OK(c, data)
		return
	}
	response.Warning(c, res.Message, data)
}

func writeLookupErr(c *gin.Context, err error) {
	if errors.Is(err, errGroupNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	response.InternalError(c, err)
}
