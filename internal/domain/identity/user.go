package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the coarse-grained role of a directory user
type Role string

const (
	RoleUser          Role = "user"
	RoleBusinessOwner Role = "business_owner"
	RoleAdmin         Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleBusinessOwner, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// User is the aggregate root for accounts
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	Role         Role
	Status       UserStatus
	LastLoginAt  *time.Time
}

// NewUser creates an active user with the plain user role
func NewUser(email, password, displayName string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		DisplayName:       displayName,
		Role:              RoleUser,
		Status:            UserStatusActive,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// VerifyPassword checks a plain password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after verifying the old one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	u.PasswordHash = hash
	u.IncrementVersion()
	return nil
}

// UpdateProfile sets the public profile fields
func (u *User) UpdateProfile(displayName, avatarURL string) error {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	avatarURL = strings.TrimSpace(avatarURL)
	if len(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}
	u.DisplayName = displayName
	u.AvatarURL = avatarURL
	u.IncrementVersion()
	return nil
}

// PromoteToOwner upgrades a plain user to business owner. Other roles are left alone.
func (u *User) PromoteToOwner() bool {
	if u.Role != RoleUser {
		return false
	}
	u.Role = RoleBusinessOwner
	u.IncrementVersion()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, RoleUser))
	return true
}

// Suspend blocks the user from signing in
func (u *User) Suspend(reason string) error {
	if u.Role == RoleAdmin {
		return shared.NewDomainError("CANNOT_SUSPEND_ADMIN", "Administrators cannot be suspended")
	}
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}
	u.Status = UserStatusSuspended
	u.IncrementVersion()
	u.AddDomainEvent(NewUserSuspendedEvent(u, reason))
	return nil
}

// Reactivate lifts a suspension
func (u *User) Reactivate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.Touch()
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateDisplayName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
