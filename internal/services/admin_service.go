package services

import (
	"context"
	"errors"
	"strings"

	"donation_backend/internal/auth"
	"donation_backend/internal/logger"
	"donation_backend/internal/models"
	"donation_backend/internal/repositories"
	"donation_backend/internal/services/dto"
	"donation_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AdminService interface {
	AccountCount(db *gorm.DB) (int64, error)
	CheckSetup(ctx context.Context, db *gorm.DB) (*dto.SetupStatusResponse, error)
	// Register создает аккаунт; без сессии работает, только пока нет ни одного аккаунта
	Register(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest, authenticated bool) error
	CreateUser(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest) error
	Login(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest) (*dto.SessionToken, error)
	Logout(ctx context.Context, db *gorm.DB, sessionID string) error
	SeedBootstrapAdmin(ctx context.Context, db *gorm.DB, username, password string) error
}

type AdminServiceImpl struct {
	adminRepo      repositories.AdminUserRepository
	sessionService SessionService
}

func NewAdminService(adminRepo repositories.AdminUserRepository, sessionService SessionService) AdminService {
	return &AdminServiceImpl{
		adminRepo:      adminRepo,
		sessionService: sessionService,
	}
}

func (s *AdminServiceImpl) AccountCount(db *gorm.DB) (int64, error) {
	count, err := s.adminRepo.Count(db)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return count, nil
}

func (s *AdminServiceImpl) CheckSetup(ctx context.Context, db *gorm.DB) (*dto.SetupStatusResponse, error) {
	count, err := s.AccountCount(db)
	if err != nil {
		return nil, err
	}
	return &dto.SetupStatusResponse{Setup: count > 0}, nil
}

// Register - две одновременные первые регистрации могут обе пройти проверку
// количества; аккаунты не удаляются, так что итог - лишний администратор.
func (s *AdminServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest, authenticated bool) error {
	if !authenticated {
		count, err := s.AccountCount(db)
		if err != nil {
			return err
		}
		if count > 0 {
			logger.CtxWarn(ctx, "Unauthenticated registration after setup", "username", req.Username)
			return apperrors.ErrSetupCompleted
		}
	}
	return s.createAccount(ctx, db, req.Username, req.Password)
}

func (s *AdminServiceImpl) CreateUser(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest) error {
	return s.createAccount(ctx, db, req.Username, req.Password)
}

func (s *AdminServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.AdminCredentialsRequest) (*dto.SessionToken, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.adminRepo.FindByUsername(db, username)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			auth.CompareDummy(req.Password)
			logger.CtxInfo(ctx, "Login failed", "reason", "unknown user")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxInfo(ctx, "Login failed", "reason", "wrong password", "admin_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	session, err := s.sessionService.Create(ctx, db, user.ID)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Admin logged in", "admin_id", user.ID)
	return session, nil
}

func (s *AdminServiceImpl) Logout(ctx context.Context, db *gorm.DB, sessionID string) error {
	if err := s.sessionService.Destroy(ctx, db, sessionID); err != nil {
		return err
	}
	logger.CtxInfo(ctx, "Admin logged out")
	return nil
}

// SeedBootstrapAdmin создает администратора из конфига на пустой установке.
func (s *AdminServiceImpl) SeedBootstrapAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		logger.CtxDebug(ctx, "Bootstrap admin not configured, skipping")
		return nil
	}

	count, err := s.AccountCount(db)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.CtxInfo(ctx, "Admin accounts exist, bootstrap skipped", "count", count)
		return nil
	}

	if err := s.createAccount(ctx, db, username, password); err != nil {
		return err
	}
	logger.CtxWarn(ctx, "Bootstrap admin created; change its password", "username", username)
	return nil
}

func (s *AdminServiceImpl) createAccount(ctx context.Context, db *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user := &models.AdminUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.adminRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return apperrors.ErrUsernameTaken
		}
		return apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Admin account created", "admin_id", user.ID, "username", username)
	return nil
}
