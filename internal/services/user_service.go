package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/google/uuid"
)

// UserService is the credential store: registration, lookup and password
// verification.
type UserService struct {
	store *repository.Store
	cache *CacheService
	log   logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService wires the store. cache may be nil.
func NewUserService(store *repository.Store, cache *CacheService, log logger.Logger) *UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{store: store, cache: cache, log: log}
}

// cachedUser is the cache representation. It omits the password hash.
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func userCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// Register validates the input, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, name, password string) (*models.User, error) {
	var errs utils.ValidationErrors
	errs = errs.Add(utils.ValidateUsername(name))
	if password == "" {
		errs = errs.Add(&utils.ValidationError{Field: "password", Message: "Password is required"})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.UserByName(ctx, name); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: name, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return u, nil
}

// FindByName looks a user up ignoring case.
func (s *UserService) FindByName(ctx context.Context, name string) (*models.User, error) {
	return s.store.UserByName(ctx, name)
}

// FindByID loads a user, going through the cache when one is configured.
// Cached users carry no password hash; Verify reloads it when needed.
func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.cache != nil {
		var cu cachedUser
		hit, err := s.cache.Get(ctx, userCacheKey(id), &cu)
		if err != nil {
			s.log.Warn(ctx, "user cache read failed", "error", err)
		}
		if hit {
			return &models.User{ID: cu.ID, Name: cu.Name, CreatedAt: cu.CreatedAt}, nil
		}
	}

	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cu := cachedUser{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
		if err := s.cache.Set(ctx, userCacheKey(id), cu); err != nil {
			s.log.Warn(ctx, "user cache write failed", "error", err)
		}
	}
	return u, nil
}

// Verify reports whether password matches the user's stored hash.
// Malformed hashes never match.
func (s *UserService) Verify(ctx context.Context, u *models.User, password string) bool {
	if u == nil {
		return false
	}
	hash := u.PasswordHash
	if hash == "" {
		stored, err := s.store.UserByID(ctx, u.ID)
		if err != nil {
			return false
		}
		hash = stored.PasswordHash
	}

	ok, err := utils.VerifyPassword(password, hash)
	if err != nil {
		s.log.Warn(ctx, "stored password hash unreadable", "user_id", u.ID.String())
		return false
	}
	return ok
}

// Authenticate resolves name and password to a user. Unknown names still
// pay for one hash verification.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	u, err := s.store.UserByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = utils.VerifyPassword(password, s.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.Verify(ctx, u, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// List returns all users ordered by name.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword(uuid.NewString())
	})
	return s.dummyHash
}
