package models

import "time"

// Center defines the training center model based on the 'centers' table.
type Center struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Location    string    `json:"location" db:"location"`
	District    string    `json:"district" db:"district"`
	Manager     string    `json:"manager" db:"manager"`
	Phone       string    `json:"phone" db:"phone"`
	Status      string    `json:"status" db:"status" example:"Active"`
	Performance string    `json:"performance" db:"performance" example:"Good"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
