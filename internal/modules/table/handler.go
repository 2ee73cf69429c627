package table

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
	g := rg.Group("/tables", authMW)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	g.POST("/reorder", h.reorder)
	g.PUT("/order", h.saveOrder)
	g.PATCH("/:id/active", h.setActive)
}

// GET /tables?section=<name>
func (h *Handler) list(c *gin.Context) {
	tables, err := h.svc.List(c.Query("section"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tables)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTableDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, res, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, t)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTableDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, res, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, t)
}

func (h *Handler) delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /tables/reorder: local move within one section
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
	tables, err := h.svc.List(dto.Section)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"moved": moved, "tables": tables})
}

// PUT /tables/order?section=<name>
func (h *Handler) saveOrder(c *gin.Context) {
	section := c.Query("section")
	if section == "" {
		response.BadRequest(c, "section is required")
		return
	}
	writeResult(c, h.svc.SaveOrder(c.Request.Context(), section), nil)
}

func (h *Handler) setActive(c *gin.Context) {
	var dto ActiveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetActive(c.Request.Context(), c.Param("id"), *dto.IsActive), nil)
}

func writeResult(c *gin.Context, res optimistic.Result, data interface{}) {
	if res.OK {
		response.OK(c, data)
		return
	}
	response.Warning(c, res.Message, data)
}

func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errTableNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errNumberTaken):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
