package banner

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/banners", authMW)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	g.POST("/upload", h.upload)
	g.POST("/reorder", h.reorder)
	g.PUT("/order", h.saveOrder)
	g.PATCH("/:id/active", h.setActive)
}

// GET /banners?kind=banner|popup
func (h *Handler) list(c *gin.Context) {
	kind := models.BannerKind(c.DefaultQuery("kind", string(models.BannerStrip)))
	banners, err := h.svc.List(kind)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.OK(c, banners)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBannerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, res, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, b)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBannerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, res, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, b)
}

func (h *Handler) delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /banners/upload: multipart image, returns the public URL
func (h *Handler) upload(c *gin.Context) {
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

	url, err := h.svc.UploadImage(c.Request.Context(), fh.Filename, payload)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"url": url})
}

// POST /banners/reorder: local move within one kind
func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	moved, err := h.svc.Reorder(&dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	banners, err := h.svc.List(dto.Kind)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.OK(c, gin.H{"moved": moved, "banners": banners})
}

// PUT /banners/order?kind=banner|popup
func (h *Handler) saveOrder(c *gin.Context) {
	kind := models.BannerKind(c.DefaultQuery("kind", string(models.BannerStrip)))
	writeResult(c, h.svc.SaveOrder(c.Request.Context(), kind), nil)
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
	case errors.Is(err, errBannerNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errBadKind), errors.Is(err, errBadDateRange),
		errors.Is(err, errBadLinkURL), errors.Is(err, errStorageUnready):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
