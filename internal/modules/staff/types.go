package staff

import "github.com/kalpit-muncho/dashboard-core/internal/models"

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateStaffDTO struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Phone    string           `json:"phone"`
	Role     models.StaffRole `json:"role"`
	Password string           `json:"password" binding:"required,min=8"`
}

type UpdateStaffDTO struct {
	Name     *string           `json:"name"`
	Phone    *string           `json:"phone"`
	Role     *models.StaffRole `json:"role"`
	Password *string           `json:"password"`
	IsActive *bool             `json:"is_active"`
}
