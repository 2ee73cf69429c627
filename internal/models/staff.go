package models

// StaffRole is the coarse permission level of a dashboard user.
type StaffRole string

const (
	RoleOwner   StaffRole = "owner"
	RoleManager StaffRole = "manager"
	RoleWaiter  StaffRole = "waiter"
)

// StaffModel is a dashboard user. Password is a bcrypt hash, never serialized.
type StaffModel struct {
	Base
	Name     string    `json:"name"  gorm:"not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone    string    `json:"phone" gorm:"type:varchar(24)"`
	Role     StaffRole `json:"role"  gorm:"type:varchar(16);default:'waiter'"`
	Password string    `json:"-"     gorm:"not null"`
	IsActive bool      `json:"is_active" gorm:"default:true"`
}

func (StaffModel) TableName() string { return "staff" }
