package identity

import (
	"context"
	"errors"

	"github.com/bizdir/backend/internal/domain/identity"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errAlreadySuspended = shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")

// UserService handles account administration and role changes
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	jwtService     *auth.JWTService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns a page of users for administrators
func (s *UserService) List(ctx context.Context, input ListUsersInput) (shared.Paginated[UserResponse], error) {
	filter := identity.UserFilter{
		Keyword:  input.Keyword,
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if input.Role != "" {
		role := identity.Role(input.Role)
		filter.Role = &role
	}
	if input.Status != "" {
		status := identity.UserStatus(input.Status)
		filter.Status = &status
	}
	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	filter.Page, filter.PageSize = paging.Page, paging.PageSize

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Suspend blocks a user and revokes every token issued so far
func (s *UserService) Suspend(ctx context.Context, userID uuid.UUID, reason string) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Suspend(reason); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens of suspended user", zap.String("user_id", userID.String()), zap.Error(err))
	}
	if err := shared.PublishPending(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("User suspended", zap.String("user_id", userID.String()), zap.String("reason", reason))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Reactivate lifts a suspension
func (s *UserService) Reactivate(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Reactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User reactivated", zap.String("user_id", userID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureOwner promotes a plain user to business owner.
// It is a no-op for owners and admins.
func (s *UserService) EnsureOwner(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.PromoteToOwner() {
		return nil
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := shared.PublishPending(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	s.logger.Info("User promoted to business owner", zap.String("user_id", userID.String()))
	return nil
}

// SuspendForModeration suspends a reported user. Users that are already
// suspended are left alone.
func (s *UserService) SuspendForModeration(ctx context.Context, userID uuid.UUID, reason string) error {
	_, err := s.Suspend(ctx, userID, reason)
	if errors.Is(err, errAlreadySuspended) {
		return nil
	}
	return err
}

// Exists reports whether an account exists
func (s *UserService) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Suspendable reports whether a moderation suspension would apply to the account
func (s *UserService) Suspendable(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return !user.IsAdmin() && user.Status != identity.UserStatusSuspended, nil
}

// Count returns the number of accounts
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}
