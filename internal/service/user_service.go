package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"user-service/internal/apperrors"
	"user-service/internal/cache"
	"user-service/internal/entity"
	"user-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Cache is the read-through user cache. Get returns cache.ErrMiss for
// users that are not cached.
type Cache interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	Set(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.UserEvent) error
}

type Option func(*UserService)

func WithCache(c Cache) Option {
	return func(s *UserService) { s.cache = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *UserService) { s.publisher = p }
}

type UserService struct {
	repo      *repository.UserRepository
	cache     Cache
	publisher EventPublisher
}

// NewUserService creates a new instance of UserService. Cache and event
// publishing are off unless enabled with an Option.
func NewUserService(repo *repository.UserRepository, opts ...Option) *UserService {
	s := &UserService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateForm checks the required fields, email first.
func ValidateForm(form entity.UserForm) error {
	if form.Email == nil {
		return apperrors.ErrMissingEmail
	}
	if form.Phone == nil {
		return apperrors.ErrMissingPhone
	}
	return nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}

	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	if s.cache != nil {
		user, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			return user, nil
		case !errors.Is(err, cache.ErrMiss):
			logger.Warn().Err(err).Msgf("Error getting user %d from cache", id)
		}
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		}
		return nil, err
	}

	s.cacheUser(ctx, user)
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, form entity.UserForm) (*entity.User, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, *form.Email, *form.Phone)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	s.cacheUser(ctx, user)
	s.publish(ctx, entity.UserCreated, user)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, form entity.UserForm) (*entity.User, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateUser(ctx, id, *form.Email, *form.Phone)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Error().Err(err).Msgf("Error updating user %d", id)
		}
		return nil, err
	}

	s.cacheUser(ctx, user)
	s.publish(ctx, entity.UserUpdated, user)
	return user, nil
}

// DeleteUser removes the user and returns its contents before removal.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Error().Err(err).Msgf("Error deleting user %d", id)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			logger.Warn().Err(err).Msgf("Error deleting user %d from cache", id)
		}
	}
	s.publish(ctx, entity.UserDeleted, user)
	return user, nil
}

func (s *UserService) cacheUser(ctx context.Context, user *entity.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, user); err != nil {
		logger.Warn().Err(err).Msgf("Error setting user %d in cache", user.ID)
	}
}

// publish runs after the row change is committed, so a failure is only logged.
func (s *UserService) publish(ctx context.Context, eventType entity.UserEventType, user *entity.User) {
	if s.publisher == nil {
		return
	}
	event := entity.UserEvent{Type: eventType, User: *user, OccurredAt: time.Now().UTC()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).Msgf("Error publishing user %s event for user %d", eventType, user.ID)
	}
}
