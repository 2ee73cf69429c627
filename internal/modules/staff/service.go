// Package staff manages dashboard users. Staff records live only in the
// local database: they gate dashboard access and are not part of the menu
// data the upstream platform owns, so no mutation here is pushed upstream.
package staff

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	pkgjwt "github.com/kalpit-muncho/dashboard-core/internal/pkg/jwt"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/pagination"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

const tokenTTL = 24 * time.Hour

var (
	errStaffNotFound  = errors.New("staff member not found")
	errBadCredentials = errors.New("invalid email or password")
	errBadRole        = errors.New("role must be owner, manager or waiter")
	errEmailTaken     = errors.New("email is already registered")
	errInactive       = errors.New("account is disabled")
	errWeakPassword   = errors.New("password must be at least 8 characters")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.StaffModel, response.Pagination, error) {
	var staff []models.StaffModel
	page, err := pagination.Paginate(
		s.db.Model(&models.StaffModel{}).Order("created_at ASC"), q, &staff,
	)
	return staff, page, err
}

func (s *Service) GetByID(id string) (*models.StaffModel, error) {
	var m models.StaffModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errStaffNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Create(dto *CreateStaffDTO) (*models.StaffModel, error) {
	role := dto.Role
	if role == "" {
		role = models.RoleWaiter
	}
	if err := validRole(role); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	var existing models.StaffModel
	if err := s.db.First(&existing, "email = ?", email).Error; err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m := &models.StaffModel{
		Name:     strings.TrimSpace(dto.Name),
		Email:    email,
		Phone:    dto.Phone,
		Role:     role,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.db.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Update(id string, dto *UpdateStaffDTO) (*models.StaffModel, error) {
	m, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if dto.Name != nil {
		changes["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Phone != nil {
		changes["phone"] = *dto.Phone
	}
	if dto.Role != nil {
		if err := validRole(*dto.Role); err != nil {
			return nil, err
		}
		changes["role"] = *dto.Role
	}
	if dto.IsActive != nil {
		changes["is_active"] = *dto.IsActive
	}
	if dto.Password != nil {
		if len(*dto.Password) < 8 {
			return nil, errWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		changes["password"] = string(hash)
	}
	if len(changes) == 0 {
		return m, nil
	}

	if err := s.db.Model(m).Updates(changes).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.StaffModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errStaffNotFound
	}
	return nil
}

// Login verifies the credentials and issues a stateless token.
func (s *Service) Login(dto *LoginDTO) (string, *models.StaffModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	var m models.StaffModel
	if err := s.db.First(&m, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errBadCredentials
		}
		return "", nil, err
	}
	if !m.IsActive {
		return "", nil, errInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(dto.Password)) != nil {
		return "", nil, errBadCredentials
	}

	token, err := pkgjwt.Sign(m.ID, string(m.Role), tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &m, nil
}

func validRole(role models.StaffRole) error {
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleWaiter:
		return nil
	default:
		return errBadRole
	}
}
