package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account sources
const (
	SourceLocal = ""
	SourceLDAP  = "ldap"
)

// Account statuses
const (
	StatusActive   = "a"
	StatusInactive = "i"
)

// User is the stored principal. It is the source of truth for role and profile.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	ClientID     uuid.UUID
	Role         int
	ProfileID    string
	Settings     string
	TwoFAEnabled bool
	TwoFASecret  string
	Source       string
	Department   string
	JobTitle     string
	JobLevel     string
	Status       string
	PasswordHash string
	PwResetCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsDirectory() bool {
	return u.Source == SourceLDAP
}

type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	ClientID     uuid.UUID
	Role         int
	Department   string
	JobTitle     string
	JobLevel     string
	PasswordHash string
	Settings     string
	Source       string
	Status       string
}

// DirectoryUser holds the attributes an external directory reports for an account.
type DirectoryUser struct {
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	Role       int
	Department string
	JobTitle   string
	JobLevel   string
}

// NewFromDirectory builds the input for a directory-sourced account. New
// accounts start with DefaultSettings.
func NewFromDirectory(email string, du *DirectoryUser) CreateUserInput {
	settings, _ := DefaultSettings().Encode()
	return CreateUserInput{
		FirstName:  du.FirstName,
		LastName:   du.LastName,
		Email:      email,
		Phone:      du.Phone,
		Role:       du.Role,
		Department: du.Department,
		JobTitle:   du.JobTitle,
		JobLevel:   du.JobLevel,
		Settings:   settings,
		Source:     SourceLDAP,
		Status:     StatusActive,
	}
}

// ApplyDirectory overwrites the mutable profile fields from a directory record.
// Role, tenant and credentials are left untouched.
func (u *User) ApplyDirectory(du *DirectoryUser) {
	u.FirstName = du.FirstName
	u.LastName = du.LastName
	u.Phone = du.Phone
	u.Department = du.Department
	u.JobTitle = du.JobTitle
	u.JobLevel = du.JobLevel
}
