package dish

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/selection"
)

// maxUploadBytes caps a single gallery upload read.
const maxUploadBytes = 10 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/dishes", authMW)

	g.GET("", h.browse)
	g.GET("/all", h.listAll)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	g.POST("/reorder", h.reorder)
	g.PUT("/order/:categoryId", h.saveOrder)

	g.PATCH("/:id/stock", h.setStock)
	g.POST("/:id/tags", h.toggleTag)
	g.POST("/:id/upsells", h.toggleUpsell)
	g.POST("/:id/gallery", h.addGalleryImage)
	g.DELETE("/:id/gallery", h.removeGalleryImage)

	s := rg.Group("/settings", authMW)
	s.GET("/universal-upsells", h.universalUpsells)
	s.POST("/universal-upsells", h.toggleUniversalUpsell)
}

// GET /dishes?menu_group=&category=&search=
func (h *Handler) browse(c *gin.Context) {
	st := FilterState{
		ActiveMenuGroup: c.Query("menu_group"),
		ActiveCategory:  c.Query("category"),
		Search:          c.Query("search"),
	}
	dishes, err := h.svc.Browse(st)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, dishes)
}

// GET /dishes/all?category=<id>: unfiltered category listing for editing
func (h *Handler) listAll(c *gin.Context) {
	categoryID := c.Query("category")
	if categoryID == "" {
		response.BadRequest(c, "category is required")
		return
	}
	dishes, err := h.svc.List(categoryID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, dishes)
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	response.OK(c, d)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDishDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, res := h.svc.Create(c.Request.Context(), &dto)
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, d)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDishDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, res, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, d)
}

func (h *Handler) delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /dishes/reorder: local move within one category
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
	dishes, err := h.svc.List(dto.CategoryID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"moved": moved, "dishes": dishes})
}

// PUT /dishes/order/:categoryId
func (h *Handler) saveOrder(c *gin.Context) {
	writeResult(c, h.svc.SaveOrder(c.Request.Context(), c.Param("categoryId")), nil)
}

// PATCH /dishes/:id/stock: per-outlet flag
func (h *Handler) setStock(c *gin.Context) {
	var dto StockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, h.svc.SetStock(c.Request.Context(), c.Param("id"), dto.OutletCode, *dto.InStock), nil)
}

// POST /dishes/:id/tags: toggle a dietary tag (cap 2)
func (h *Handler) toggleTag(c *gin.Context) {
	var dto ToggleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sel, res, err := h.svc.ToggleTag(c.Request.Context(), c.Param("id"), dto.ID)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeSelection(c, sel, res)
}

// POST /dishes/:id/upsells: toggle a recommended dish (cap 4)
func (h *Handler) toggleUpsell(c *gin.Context) {
	var dto ToggleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sel, res, err := h.svc.ToggleUpsell(c.Request.Context(), c.Param("id"), dto.ID)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeSelection(c, sel, res)
}

// GET /settings/universal-upsells
func (h *Handler) universalUpsells(c *gin.Context) {
	ids, err := h.svc.UniversalUpsells()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"upsells": ids})
}

// POST /settings/universal-upsells: toggle a restaurant-wide upsell (cap 10)
func (h *Handler) toggleUniversalUpsell(c *gin.Context) {
	var dto ToggleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sel, res, err := h.svc.ToggleUniversalUpsell(c.Request.Context(), dto.ID)
	if err != nil {
		writeLookupErr(c, err)
		return
	}
	writeSelection(c, sel, res)
}

// POST /dishes/:id/gallery: multipart image upload (cap 3)
func (h *Handler) addGalleryImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		response.BadRequest(c, "file is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()
	payload, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	url, res, err := h.svc.AddGalleryImage(c.Request.Context(), c.Param("id"), fh.Filename, payload)
	if err != nil {
		switch {
		case errors.Is(err, errGalleryFull):
			response.Warning(c, err.Error(), nil)
		case errors.Is(err, errDishNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, errStorageUnready):
			response.BadRequest(c, err.Error())
		default:
			response.BadRequest(c, err.Error())
		}
		return
	}
	writeResult(c, res, gin.H{"url": url})
}

// DELETE /dishes/:id/gallery
func (h *Handler) removeGalleryImage(c *gin.Context) {
	var dto GalleryRemoveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.RemoveGalleryImage(c.Request.Context(), c.Param("id"), dto.URL)
	if err != nil {
		if errors.Is(err, errNotInGallery) {
			response.BadRequest(c, err.Error())
			return
		}
		writeLookupErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

func writeSelection(c *gin.Context, sel selection.Result, res optimistic.Result) {
	if !sel.Accepted {
		response.Warning(c, sel.Message, sel)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.OK(c, sel)
}

func writeResult(c *gin.Context, res optimistic.Result, data interface{}) {
	if res.OK {
		response.OK(c, data)
		return
	}
	response.Warning(c, res.Message, data)
}

func writeLookupErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errDishNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errUnknownUpsellDish):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
