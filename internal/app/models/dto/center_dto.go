package dto

// CreateCenterRequest is the payload for registering a training center.
type CreateCenterRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	District string `json:"district" binding:"required"`
	Manager  string `json:"manager"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
}

// UpdateCenterRequest is the payload for editing a training center.
type UpdateCenterRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	District    *string `json:"district"`
	Manager     *string `json:"manager"`
	Phone       *string `json:"phone"`
	Status      *string `json:"status"`
	Performance *string `json:"performance"`
}
