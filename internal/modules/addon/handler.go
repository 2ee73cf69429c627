package addon

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
	g := rg.Group("/addon-groups", authMW)
	g.GET("", h.listGroups)
	g.GET("/:id", h.getGroup)
	g.POST("", h.createGroup)
	g.PATCH("/:id", h.updateGroup)
	g.DELETE("/:id", h.deleteGroup)
	g.PUT("/:id/items/order", h.saveItemOrder)

	i := rg.Group("/addon-items", authMW)
	i.POST("", h.createItem)
	i.PATCH("/:id", h.updateItem)
	i.DELETE("/:id", h.deleteItem)
	i.POST("/reorder", h.reorderItems)
	i.PATCH("/:id/stock", h.setItemStock)

	d := rg.Group("/dishes/:id/addon-groups", authMW)
	d.POST("", h.attach)
	d.DELETE("/:groupId", h.detach)
}

func (h *Handler) listGroups(c *gin.Context) {
	groups, err := h.svc.ListGroups()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, groups)
}

func (h *Handler) getGroup(c *gin.Context) {
	g, err := h.svc.GetGroup(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.OK(c, g)
}

func (h *Handler) createGroup(c *gin.Context) {
	var dto CreateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, res, err := h.svc.CreateGroup(c.Request.Context(), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, g)
}

func (h *Handler) updateGroup(c *gin.Context) {
	var dto UpdateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, res, err := h.svc.UpdateGroup(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, g)
}

func (h *Handler) deleteGroup(c *gin.Context) {
	res, err := h.svc.DeleteGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

func (h *Handler) createItem(c *gin.Context) {
	var dto CreateItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, res, err := h.svc.CreateItem(c.Request.Context(), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, item)
}

func (h *Handler) updateItem(c *gin.Context) {
	var dto UpdateItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, res, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, item)
}

func (h *Handler) deleteItem(c *gin.Context) {
	res, err := h.svc.DeleteItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /addon-items/reorder: local move within one group
func (h *Handler) reorderItems(c *gin.Context) {
	var dto ReorderItemsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	moved, err := h.svc.ReorderItems(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items, err := h.svc.ListItems(dto.GroupID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"moved": moved, "items": items})
}

// PUT /addon-groups/:id/items/order
func (h *Handler) saveItemOrder(c *gin.Context) {
	writeResult(c, h.svc.SaveItemOrder(c.Request.Context(), c.Param("id")), nil)
}

func (h *Handler) setItemStock(c *gin.Context) {
	var dto StockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetItemStock(c.Request.Context(), c.Param("id"), *dto.InStock), nil)
}

// POST /dishes/:id/addon-groups
func (h *Handler) attach(c *gin.Context) {
	var dto AttachDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.AttachToDish(c.Request.Context(), c.Param("id"), dto.GroupID)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// DELETE /dishes/:id/addon-groups/:groupId
func (h *Handler) detach(c *gin.Context) {
	res, err := h.svc.DetachFromDish(c.Request.Context(), c.Param("id"), c.Param("groupId"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
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
	case errors.Is(err, errGroupNotFound), errors.Is(err, errItemNotFound), errors.Is(err, errDishNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errBoundsInverted), errors.Is(err, errGroupAlreadySet), errors.Is(err, errGroupNotOnDish):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
