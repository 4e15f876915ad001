package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, sess *utils.Session) error
}

type authService struct {
	repo   *repository.Repository // grouping user, session, patient & staff repos
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Email must be unused
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("process password: %w", err)
	}

	// 4. Create user, always as a patient
	user := &entity.User{
		Base:         entity.Base{ID: uuid.New()},
		Email:        email,
		PasswordHash: hashed,
		Phone:        &req.Mobile,
		Role:         entity.RolePatient,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// 5. Patient profile carries the contact details bookings copy
	patient := &entity.Patient{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		UserID:       &user.ID,
		FullName:     strings.TrimSpace(req.FullName),
		Mobile:       req.Mobile,
		Email:        email,
		Address:      req.Address,
	}
	if err := s.repo.Patient.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient profile: %w", err)
	}

	// 6. Log the new account straight in
	resp, err := s.issue(ctx, user, entity.RolePatient, req.ClientInfo)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.IsDeleted() || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}

	var staff *entity.Staff
	if !user.Role.IsValid() {
		staff, err = s.repo.Staff.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find staff record: %w", err)
		}
	}

	role, source := ResolveRole(user, staff, s.config.Staff.EmailDomain)
	if source == RoleFromEmailFallback {
		s.log.Warn("Role resolved from email domain; set users.role for this account",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
		)
	}

	resp, err := s.issue(ctx, user, role, req.ClientInfo)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("role_source", string(source)))

	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sess *utils.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	token, err := uuid.Parse(sess.SessionID)
	if err != nil {
		return fmt.Errorf("%w: invalid session", ErrUnauthorized)
	}

	revoked, err := s.repo.Session.Revoke(ctx, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if !revoked {
		return fmt.Errorf("%w: session already closed", ErrUnauthorized)
	}

	s.log.Info("User logged out", zap.String("user_id", sess.UserID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

// issue stores a revocable session and signs the access token pointing at it.
func (s *authService) issue(ctx context.Context, user *entity.User, role entity.UserRole, client request.ClientInfo) (*response.AuthResponse, error) {
	expiresAt := time.Now().Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour)

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		UserID:     user.ID,
		Token:      utils.GenerateSessionToken(),
		ExpiresAt:  expiresAt,
	}
	if client.UserAgent != "" {
		session.UserAgent = &client.UserAgent
	}
	if client.IPAddress != "" {
		session.IPAddress = &client.IPAddress
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := utils.GenerateAccessToken(s.config.JWT.Secret, user.ID, user.Email, string(role), session.Token.String(), expiresAt)
	if err != nil {
		s.log.Error("Failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &response.AuthResponse{
		UserID:    user.ID.String(),
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     user.Email,
		Role:      role,
	}, nil
}
