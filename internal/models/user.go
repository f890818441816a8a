package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleMunicipal  UserRole = "municipal"
	RoleRepairTeam UserRole = "repair_team"
	RoleCitizen    UserRole = "citizen"
)

// Roles lists every role a user can hold.
var Roles = []UserRole{RoleAdmin, RoleMunicipal, RoleRepairTeam, RoleCitizen}

func (r UserRole) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Label is the human readable role name.
func (r UserRole) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleMunicipal:
		return "Municipal Authority"
	case RoleRepairTeam:
		return "Repair Team"
	case RoleCitizen:
		return "Citizen"
	default:
		return string(r)
	}
}

// LandingPath is the dashboard a user is sent to after logging in.
func (r UserRole) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard/admin/"
	case RoleMunicipal:
		return "/dashboard/municipal/"
	case RoleRepairTeam:
		return "/dashboard/repair-team/"
	default:
		return "/dashboard/citizen/"
	}
}

type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email     string         `json:"email" gorm:"size:255"`
	Password  string         `json:"-" gorm:"not null"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      UserRole       `json:"role" gorm:"not null;default:'citizen';size:20;index"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
