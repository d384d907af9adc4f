package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether r is one of the assignable roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

type Profile struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email            string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash     string    `json:"-" gorm:"type:varchar(255);not null"`
	FullName         string    `json:"full_name" gorm:"type:varchar(255);default:''"`
	UserType         string    `json:"user_type" gorm:"type:varchar(50);default:'student'"`
	IsVerified       bool      `json:"is_verified" gorm:"default:false"`
	IsSuspended      bool      `json:"is_suspended" gorm:"default:false"`
	CourseOfInterest *string   `json:"course_of_interest,omitempty" gorm:"type:varchar(255)"`
	PhoneNumber      *string   `json:"phone_number,omitempty" gorm:"type:varchar(64)"`
	Country          *string   `json:"country,omitempty" gorm:"type:varchar(128)"`
	Gender           *string   `json:"gender,omitempty" gorm:"type:varchar(32)"`
	AvatarURL        *string   `json:"avatar_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type UserRole struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Profile   Profile   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Role      string    `json:"role" gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
