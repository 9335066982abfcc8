package services

import (
	"context"
	"errors"
	"time"

	"donation_backend/internal/auth"
	"donation_backend/internal/logger"
	"donation_backend/internal/models"
	"donation_backend/internal/repositories"
	"donation_backend/internal/services/dto"
	"donation_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

type SessionService interface {
	Create(ctx context.Context, db *gorm.DB, adminID uint) (*dto.SessionToken, error)
	Resolve(ctx context.Context, db *gorm.DB, token string) (*dto.SessionIdentity, error)
	Destroy(ctx context.Context, db *gorm.DB, sessionID string) error
	CleanupExpired(ctx context.Context, db *gorm.DB) (int64, error)
	TTL() time.Duration
}

type SessionServiceImpl struct {
	sessionRepo repositories.AdminSessionRepository
	signer      *auth.TokenSigner
	ttl         time.Duration
	now         func() time.Time
}

func NewSessionService(sessionRepo repositories.AdminSessionRepository, signer *auth.TokenSigner, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionServiceImpl{
		sessionRepo: sessionRepo,
		signer:      signer,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *SessionServiceImpl) TTL() time.Duration {
	return s.ttl
}

func (s *SessionServiceImpl) Create(ctx context.Context, db *gorm.DB, adminID uint) (*dto.SessionToken, error) {
	now := s.now()
	session := &models.AdminSession{
		ID:          uuid.NewString(),
		AdminUserID: adminID,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}
	if err := s.sessionRepo.Create(db, session); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	token, err := s.signer.Sign(session.ID, adminID, session.ExpiresAt)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.SessionToken{
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Resolve проверяет подпись токена и затем ищет сессию в БД; сессия,
// удаленная при logout, невалидна, даже если срок токена не истек.
func (s *SessionServiceImpl) Resolve(ctx context.Context, db *gorm.DB, token string) (*dto.SessionIdentity, error) {
	if token == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		logger.CtxDebug(ctx, "Session token rejected", "error", err.Error())
		return nil, apperrors.ErrAuthenticationRequired
	}
	adminID, err := claims.AdminID()
	if err != nil {
		return nil, apperrors.ErrAuthenticationRequired
	}

	session, err := s.sessionRepo.FindByID(db, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, apperrors.ErrAuthenticationRequired
		}
		return nil, apperrors.DatabaseError(err)
	}

	if session.AdminUserID != adminID {
		logger.CtxWarn(ctx, "Session owner mismatch", "session_id", session.ID)
		return nil, apperrors.ErrAuthenticationRequired
	}

	if session.IsExpired(s.now()) {
		if err := s.sessionRepo.DeleteByID(db, session.ID); err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
			logger.CtxWithError(ctx, "Failed to delete expired session", err, "session_id", session.ID)
		}
		return nil, apperrors.ErrAuthenticationRequired
	}

	return &dto.SessionIdentity{AdminID: session.AdminUserID, SessionID: session.ID}, nil
}

func (s *SessionServiceImpl) Destroy(ctx context.Context, db *gorm.DB, sessionID string) error {
	if err := s.sessionRepo.DeleteByID(db, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil
		}
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *SessionServiceImpl) CleanupExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	return s.sessionRepo.DeleteExpired(db, s.now())
}
