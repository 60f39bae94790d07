package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"okurmen-backend/internal/config"
	"okurmen-backend/internal/model"
	"okurmen-backend/utilities"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultTimeMinutes is seeded for every level without a settings row.
const DefaultTimeMinutes = 20

// InitDBFromConfig opens the configured database and applies the pool limits.
func InitDBFromConfig(cfg *config.APIConfig) (*gorm.DB, error) {
	gdb, err := Open(Driver(cfg.DB.Driver), dsnFromConfig(cfg.DB))
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if Driver(cfg.DB.Driver) != DriverSQLite {
		if cfg.DB.Pool.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.DB.Pool.MaxOpenConns)
		}
		if cfg.DB.Pool.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.DB.Pool.MaxIdleConns)
		}
	}
	if cfg.DB.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.Pool.ConnMaxLifetime) * time.Second)
	}
	return gdb, nil
}

// Open opens a gorm connection for the given driver. Driver errors are
// translated so that unique violations surface as gorm.ErrDuplicatedKey.
func Open(driver Driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "okurmen_test.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			dsn = "host=localhost port=5432 dbname=okurmen_test sslmode=disable"
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(gormWriter{}),
	})
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// One writer at a time; concurrent transactions on the same file
		// otherwise fail with SQLITE_BUSY.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// gormWriter sends gorm's own log lines to the application log.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	utilities.Warn(format, args...)
}

// newGormLogger reports failed and slow statements only. Missing rows are
// ordinary lookups here and are not logged.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Ping checks that the database answers within the context deadline.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the tables of every model.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	utilities.Info("database migrated")
	return nil
}

// SeedSettings inserts a settings row with DefaultTimeMinutes for every
// level that has none. Existing rows are left untouched.
func SeedSettings(gdb *gorm.DB) error {
	for _, lvl := range model.Levels {
		row := model.TestSettings{Level: lvl, TimeMinutes: DefaultTimeMinutes}
		err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "level"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("seed settings for %s: %w", lvl, err)
		}
	}
	return nil
}

func dsnFromConfig(c config.DBConfig) string {
	if c.DSN != "" {
		return c.DSN
	}
	if Driver(c.Driver) == DriverSQLite {
		return c.Names.OKURMEN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.Username, c.Password.Value, c.Names.OKURMEN, sslMode,
	)
}
