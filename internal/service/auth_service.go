package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/repository"
	"github.com/stocklens/catalog-api/internal/utils"
)

// UserStore is the account surface the auth gate needs. Implemented by
// repository.UserRepository.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	SetActive(ctx context.Context, id string, active bool) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// AuthService verifies credentials and issues tokens carrying the actor
// identity and role consumed by the request gate.
type AuthService struct {
	users UserStore
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Login verifies credentials and returns a signed token plus the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, utils.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("login attempt on inactive account")
		return "", nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("email", email).Str("role", user.Role).Msg("login successful")
	return token, user, nil
}

// Register creates an employee account that stays inactive until an
// admin approves it. A duplicate email surfaces as Conflict.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	user, err := s.createUser(ctx, email, password, name, models.RoleEmployee, false)
	if err != nil {
		return nil, err
	}
	log.Info().Str("email", email).Msg("account registered, awaiting approval")
	return user, nil
}

// EnsureAdmin creates an active admin account unless one already exists
// under the same email. Called at startup so a fresh deployment has a
// first account to log in with.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if _, err := s.createUser(ctx, email, password, name, models.RoleAdmin, true); err != nil {
		// A concurrent replica may have won the insert.
		if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindConflict {
			return nil
		}
		return err
	}
	log.Info().Str("email", email).Msg("bootstrap admin account created")
	return nil
}

// ListPendingUsers returns accounts waiting for approval.
func (s *AuthService) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListPending(ctx)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return users, nil
}

// ApproveUser activates a registered account so it can log in.
func (s *AuthService) ApproveUser(ctx context.Context, id string) (*models.User, error) {
	n, err := s.users.SetActive(ctx, id, true)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	if n == 0 {
		return nil, utils.NotFound("USER_NOT_FOUND", "no user with id "+id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	log.Info().Str("email", user.Email).Msg("account approved")
	return user, nil
}

// RejectUser removes a registered account.
func (s *AuthService) RejectUser(ctx context.Context, id string) error {
	n, err := s.users.Delete(ctx, id)
	if err != nil {
		return utils.Internal("", err)
	}
	if n == 0 {
		return utils.NotFound("USER_NOT_FOUND", "no user with id "+id)
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, name, role string, active bool) (*models.User, error) {
	if email == "" || password == "" {
		return nil, utils.InvalidArgument("MISSING_CREDENTIALS", "email and password are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal("", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Role:         role,
		IsActive:     active,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, utils.Conflict("EMAIL_TAKEN", "an account with email "+email+" already exists")
		}
		return nil, utils.Internal("", err)
	}
	return user, nil
}
