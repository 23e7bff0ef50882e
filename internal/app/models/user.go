package models

import (
	"time"
)

// User defines the user model based on the 'users' table.
// District is the free-text partition key used by the access filter;
// it is compared by plain string equality everywhere.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"officer@naita.lk"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Kamal"`
	LastName    string     `json:"lastName" db:"last_name" example:"Perera"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"training_officer"`
	District    string     `json:"district" db:"district" example:"Matara"`
	CenterID    *int64     `json:"centerId,omitempty" db:"center_id"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	Center      *Center    `json:"center,omitempty"` // Relation, no db tag
}
