package workers

import (
	"context"
	"time"

	"donation_backend/internal/logger"
	"donation_backend/internal/services"

	"gorm.io/gorm"
)

const sessionWorkerName = "session_cleanup"

// SessionWorker периодически удаляет истекшие админ-сессии.
// Пожертвования он не трогает.
type SessionWorker struct {
	db       *gorm.DB
	sessions services.SessionService
	interval time.Duration
}

func NewSessionWorker(db *gorm.DB, sessions services.SessionService, interval time.Duration) *SessionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionWorker{db: db, sessions: sessions, interval: interval}
}

// Start запускает цикл очистки в горутине до отмены ctx.
// Возвращаемый канал закрывается после выхода из цикла.
func (w *SessionWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.run(ctx)
	}()
	return done
}

func (w *SessionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.cleanup(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Session worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *SessionWorker) cleanup(ctx context.Context) {
	defer logger.RecoverPanic(ctx, sessionWorkerName)

	db := w.db
	if db != nil {
		db = db.WithContext(ctx)
	}
	removed, err := w.sessions.CleanupExpired(ctx, db)
	logger.WorkerLog(sessionWorkerName, "delete_expired", err, "removed", removed)
}
