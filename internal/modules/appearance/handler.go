package appearance

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/appearance", authMW)

	g.GET("/theme", h.getTheme)
	g.PUT("/theme", h.updateTheme)
	g.POST("/logo", h.uploadLogo)

	g.POST("/gallery", h.addGalleryImage)
	g.DELETE("/gallery", h.removeGalleryImage)

	g.GET("/links", h.listLinks)
	g.POST("/links", h.createLink)
	g.PATCH("/links/:id", h.updateLink)
	g.DELETE("/links/:id", h.deleteLink)
	g.POST("/links/reorder", h.reorderLinks)
	g.PUT("/links/order", h.saveLinkOrder)
}

func (h *Handler) getTheme(c *gin.Context) {
	theme, err := h.svc.Theme()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, theme)
}

func (h *Handler) updateTheme(c *gin.Context) {
	var dto UpdateThemeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	theme, res, err := h.svc.UpdateTheme(c.Request.Context(), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	writeResult(c, res, theme)
}

// POST /appearance/logo: multipart upload, returns the public URL
func (h *Handler) uploadLogo(c *gin.Context) {
	payload, filename, ok := readUpload(c)
	if !ok {
		return
	}
	url, err := h.svc.UploadLogo(c.Request.Context(), filename, payload)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"url": url})
}

// POST /appearance/gallery: multipart upload (cap 3)
func (h *Handler) addGalleryImage(c *gin.Context) {
	payload, filename, ok := readUpload(c)
	if !ok {
		return
	}
	url, res, err := h.svc.AddGalleryImage(c.Request.Context(), filename, payload)
	if err != nil {
		if errors.Is(err, errGalleryFull) {
			response.Warning(c, err.Error(), nil)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	writeResult(c, res, gin.H{"url": url})
}

func (h *Handler) removeGalleryImage(c *gin.Context) {
	var dto GalleryRemoveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.RemoveGalleryImage(c.Request.Context(), dto.URL)
	if err != nil {
		if errors.Is(err, errNotInGallery) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	writeResult(c, res, nil)
}

func (h *Handler) listLinks(c *gin.Context) {
	links, err := h.svc.ListLinks()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, links)
}

func (h *Handler) createLink(c *gin.Context) {
	var dto CreateLinkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	l, res, err := h.svc.CreateLink(c.Request.Context(), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	if !res.OK {
		response.Warning(c, res.Message, nil)
		return
	}
	response.Created(c, l)
}

func (h *Handler) updateLink(c *gin.Context) {
	var dto UpdateLinkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	l, res, err := h.svc.UpdateLink(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, l)
}

func (h *Handler) deleteLink(c *gin.Context) {
	res, err := h.svc.DeleteLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeResult(c, res, nil)
}

// POST /appearance/links/reorder: local move, committed by PUT /links/order
func (h *Handler) reorderLinks(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	moved, err := h.svc.ReorderLinks(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	links, err := h.svc.ListLinks()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"moved": moved, "links": links})
}

func (h *Handler) saveLinkOrder(c *gin.Context) {
	writeResult(c, h.svc.SaveLinkOrder(c.Request.Context()), nil)
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return nil, "", false
	}
	if fh.Size > maxUploadBytes {
		response.BadRequest(c, "file is too large")
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return nil, "", false
	}
	defer f.Close()
	payload, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		response.InternalError(c, err)
		return nil, "", false
	}
	return payload, fh.Filename, true
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
	case errors.Is(err, errLinkNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errBadLinkURL), errors.Is(err, errStorageUnready):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
