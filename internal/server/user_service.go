package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/config"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// DBClient is the account storage the UserService needs. *db.DB implements it.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone string, role types.Role, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// UserService provides account registration, login and password changes.
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:           dbUser.ID,
		Name:         dbUser.Name,
		Email:        dbUser.Email,
		Phone:        dbUser.Phone,
		Role:         dbUser.Role,
		PasswordSet:  dbUser.PasswordSet,
		CVPath:       dbUser.CVPath,
		CVUploadedAt: dbUser.CVUploadedAt,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}
}

// Register creates a candidate account.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	return s.create(ctx, req.Name, req.Email, req.Phone, req.Password, types.RoleCandidate)
}

// CreateStaff creates an account with an explicit role. Callers must be admins.
func (s *UserService) CreateStaff(ctx context.Context, req *types.CreateStaffRequest) (*types.User, error) {
	role, err := types.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return s.create(ctx, req.Name, req.Email, req.Phone, req.Password, role)
}

func (s *UserService) create(ctx context.Context, name, email, phone, password string, role types.Role) (*types.User, error) {
	email = normalizeEmail(email)
	passwordHash, err := s.passwordConfig.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique index on email is the duplicate check.
	userID, err := s.db.CreateUser(ctx, strings.TrimSpace(name), email, strings.TrimSpace(phone), role, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.GetUser(ctx, userID)
}

// GetUser returns an account without its password hash.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	dbUser, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: id}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data. Unknown emails and wrong
// passwords fail identically and take about as long.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if dbUser == nil || !dbUser.PasswordSet {
		s.passwordConfig.VerifyDummy(req.Password)
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdatePassword updates a user's password
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}
	if !s.passwordConfig.VerifyPassword(currentPassword, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.db.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
