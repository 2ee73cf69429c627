package category

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
	g := rg.Group("/categories", authMW)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	g.POST("/reorder", h.reorder)
	g.PUT("/order/:groupId", h.saveOrder)

	g.PATCH("/:id/stock", h.setStock)
	g.PATCH("/:id/active", h.setActive)
}

// GET /categories?menu_group=<id>
func (h *Handler) list(c *gin.Context) {
	groupID := c.Query("menu_group")
	if groupID == "" {
		response.BadRequest(c, "menu_group is required")
		return
	}
	cats, err := h.svc.List(groupID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]categoryView, len(cats))
	for i, cat := range cats {
		out[i] = toView(cat)
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, res := h.svc.Create(c.Request.Context(), &dto)
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, toView(*cat))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, res, err := h.svc.Rename(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, toView(*cat))
}

func (h *Handler) delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /categories/reorder: local move within one menu group
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
	cats, err := h.svc.List(dto.MenuGroupID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]categoryView, len(cats))
	for i, cat := range cats {
		out[i] = toView(cat)
	}
	response.OK(c, gin.H{"moved": moved, "categories": out})
}

// PUT /categories/order/:groupId
func (h *Handler) saveOrder(c *gin.Context) {
	writeResult(c, h.svc.SaveOrder(c.Request.Context(), c.Param("groupId")), nil)
}

func (h *Handler) setStock(c *gin.Context) {
	var dto StockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetStock(c.Request.Context(), c.Param("id"), *dto.InStock), nil)
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

func writeLookupErr(c *gin.Context, err error) {
	if errors.Is(err, errCategoryNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	response.InternalError(c, err)
}
