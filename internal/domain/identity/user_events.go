package identity

import (
	"github.com/bizdir/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered  = "UserRegistered"
	EventTypeUserRoleChanged = "UserRoleChanged"
	EventTypeUserSuspended   = "UserSuspended"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	OldRole Role `json:"old_role"`
	NewRole Role `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID),
		OldRole:         oldRole,
		NewRole:         user.Role,
	}
}

// UserSuspendedEvent is published when a user is suspended
type UserSuspendedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewUserSuspendedEvent creates a new UserSuspendedEvent
func NewUserSuspendedEvent(user *User, reason string) *UserSuspendedEvent {
	return &UserSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserSuspended, AggregateTypeUser, user.ID),
		Reason:          reason,
	}
}
