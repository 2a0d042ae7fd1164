package database

import (
	"fmt"
	"strings"
	"time"

	"farmcloud/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options configures the connection.
type Options struct {
	Debug bool
	// Logger receives gorm's warnings and, in debug mode, every statement.
	Logger *zap.Logger
	// SlowThreshold is the gorm slow query warning threshold.
	SlowThreshold time.Duration
}

// Initialize opens the database named by databaseURL and migrates the schema.
// postgres:// and postgresql:// URLs use PostgreSQL, sqlite:// URLs a SQLite file.
func Initialize(databaseURL string, opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	slow := opts.SlowThreshold
	if slow == 0 {
		slow = 200 * time.Millisecond
	}

	config := &gorm.Config{
		Logger: logger.New(gormWriter{log: opts.Logger}, logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		// Surface gorm.ErrDuplicatedKey / ErrForeignKeyViolated from the drivers.
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.Customer{},
		&models.Breed{},
		&models.Animal{},
		&models.Offer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.Settings{},
		&models.User{},
		&models.OrderSequence{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q: expected postgres:// or sqlite://", databaseURL)
	}
}

// sqliteDSN enables foreign keys and takes the write lock when a transaction starts.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// gormWriter adapts zap to gorm's logger.Writer.
type gormWriter struct {
	log *zap.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	if w.log == nil {
		return
	}
	w.log.Sugar().Infof(format, args...)
}
