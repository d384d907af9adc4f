package types

import "dlh/dlh/sources/psql/models"

type SignupRequest struct {
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	FullName         string  `json:"full_name"`
	CourseOfInterest *string `json:"course_of_interest,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	Country          *string `json:"country,omitempty"`
	Gender           *string `json:"gender,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	FullName         *string `json:"full_name,omitempty"`
	CourseOfInterest *string `json:"course_of_interest,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	Country          *string `json:"country,omitempty"`
	Gender           *string `json:"gender,omitempty"`
}

type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Email    *string `json:"email,omitempty"`
	UserType *string `json:"user_type,omitempty"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	IsAdmin bool `json:"is_admin"`
}

type Dashboard struct {
	SessionCount int64                   `json:"session_count"`
	ImageCount   int64                   `json:"image_count"`
	Sessions     []models.ChatSession    `json:"recent_sessions"`
	Images       []models.GeneratedImage `json:"recent_images"`
}
