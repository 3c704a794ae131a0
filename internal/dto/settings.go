package dto

// CreateSchoolRequest is the payload for adding a school.
type CreateSchoolRequest struct {
	SchoolName string `json:"schoolName" binding:"required"`
}
