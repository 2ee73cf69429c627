package staff

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kalpit-muncho/dashboard-core/internal/middleware"
	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/pagination"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/auth/login", h.login)

	g := rg.Group("/staff", authMW)
	g.GET("/me", h.me)

	admin := g.Group("", middleware.RequireRole(string(models.RoleOwner), string(models.RoleManager)))
	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.PATCH("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, m, err := h.svc.Login(&dto)
	if err != nil {
		if errors.Is(err, errBadCredentials) || errors.Is(err, errInactive) {
			response.Warning(c, err.Error(), nil)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "staff": m})
}

// GET /staff/me
func (h *Handler) me(c *gin.Context) {
	m, err := h.svc.GetByID(middleware.CurrentStaffID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) list(c *gin.Context) {
	staff, page, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, staff, page)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateStaffDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Create(&dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Created(c, m)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateStaffDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	response.OKMsg(c, "staff member removed")
}

func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errStaffNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errEmailTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, errBadRole), errors.Is(err, errWeakPassword):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
