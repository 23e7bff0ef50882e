package dto

import "time"

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role" binding:"required"`
	District  string `json:"district"`
	CenterID  *int64 `json:"centerId"`
}

// UpdateUserRequest is the admin payload for editing an account.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	District  *string `json:"district"`
	CenterID  *int64  `json:"centerId"`
	IsActive  *bool   `json:"isActive"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	District    string     `json:"district"`
	CenterID    *int64     `json:"centerId,omitempty"`
	CenterName  string     `json:"centerName,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
