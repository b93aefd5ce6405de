package database

import (
	"log/slog"
	"time"

	"github.com/juju/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL fixture database named by dsn.
func Connect(dsn string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn), 5, 2*time.Second)
}

// Open retries a few times because a freshly started database container
// may not accept connections yet.
func Open(dialector gorm.Dialector, attempts int, wait time.Duration) (*gorm.DB, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			slog.Info("fixture database connected", "dialect", dialector.Name())
			return db, nil
		}
		slog.Warn("fixture database connection failed", "attempt", i+1, "error", err)
		if i < attempts-1 {
			time.Sleep(wait)
		}
	}
	return nil, errors.Annotatef(err, "connecting after %d attempts", attempts)
}
