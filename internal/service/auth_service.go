package service

import (
	"errors"
	"fmt"
	"time"

	"hse-compliance/internal/auth"
	"hse-compliance/internal/config"
	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	roleRepo    *repository.RoleRepository
	sessionRepo *repository.SessionRepository
	auditRepo   *repository.AuditRepository
	authSvc     *auth.Service
	jwtConfig   *config.JWTConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	sessionRepo *repository.SessionRepository,
	auditRepo *repository.AuditRepository,
	authSvc *auth.Service,
	jwtConfig *config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		authSvc:     authSvc,
		jwtConfig:   jwtConfig,
	}
}

// Register creates a new user account. The first registered user becomes an
// admin; everyone after that gets the hse_manager role.
func (s *AuthService) Register(email, password, firstName, lastName string) (*models.User, error) {
	email = validator.SanitizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validator.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user already exists")
	}

	passwordHash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	roleName := "hse_manager"
	if user.ID == 1 {
		roleName = "admin"
	}

	role, err := s.roleRepo.GetByName(roleName)
	if err == nil && role != nil {
		_ = s.roleRepo.AssignToUser(user.ID, role.ID)
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &user.ID,
		Action:   "register",
		Resource: "user",
		Details:  fmt.Sprintf("Registered user %s (ID: %d) with role %s", email, user.ID, roleName),
	})

	return user, nil
}

// Login authenticates a user and returns a JWT access token backed by a
// server-side session
func (s *AuthService) Login(email, password, ipAddress, userAgent string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	token, jti, err := s.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &models.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		JTI:            jti,
		ExpiresAt:      time.Now().Add(s.jwtConfig.Expiration),
		LastActivityAt: time.Now(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	_ = s.userRepo.UpdateLastLogin(user.ID, time.Now())

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &user.ID,
		Action:   "login",
		Resource: "session",
		Details:  fmt.Sprintf("User %s logged in", email),
	})

	return token, user, nil
}

// Logout invalidates the session behind a token. Works with expired tokens
// so a stale tab can still log out.
func (s *AuthService) Logout(token string) error {
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil {
		return fmt.Errorf("failed to extract JTI: %w", err)
	}
	if jti == "" {
		return errors.New("token missing JTI")
	}
	return s.sessionRepo.DeleteByJTI(jti)
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// GetUserRoles retrieves all roles of a user
func (s *AuthService) GetUserRoles(userID uint) ([]models.Role, error) {
	return s.userRepo.GetUserRoles(userID)
}

// CleanupExpiredSessions removes expired sessions
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired()
}
