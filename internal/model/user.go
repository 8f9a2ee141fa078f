package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer   UserRole = "CUSTOMER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// IsStaff is the single role predicate used by middleware and controllers.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	gorm.Model
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"type:varchar(20);default:'CUSTOMER';not null"`

	// Opaque refresh token, stored server-side and rotated on every refresh
	RefreshToken          string     `json:"-" gorm:"index"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`

	Profile  *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
	Orders   []Order      `json:"-"`
	Licenses []License    `json:"-"`
}

type UserProfile struct {
	gorm.Model
	UserID      uint   `json:"user_id" gorm:"uniqueIndex"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	CompanyName string `json:"company_name"`
	CountryCode string `json:"country_code"`
}

func (u *User) GetFullName() string {
	if u.Profile == nil {
		return ""
	}
	return strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
}

func (u *User) GetPublicProfile() map[string]interface{} {
	profile := map[string]interface{}{
		"id":        u.ID,
		"email":     u.Email,
		"role":      u.Role,
		"is_active": u.IsActive,
	}
	if u.Profile != nil {
		profile["full_name"] = u.GetFullName()
		profile["company_name"] = u.Profile.CompanyName
		profile["phone_number"] = u.Profile.PhoneNumber
		profile["country_code"] = u.Profile.CountryCode
	}
	return profile
}
