package database

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	configs "github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

var (
	db   *gorm.DB
	once sync.Once
)

// InitDatabase initializes the database connection
func InitDatabase(config *configs.Config) *gorm.DB {
	var err error
	once.Do(func() {
		startTime := time.Now()

		// Configure GORM logger based on environment
		var dbLogger gormLogger.Interface
		switch config.App.Environment {
		case constants.EnvProduction:
			dbLogger = gormLogger.Default.LogMode(gormLogger.Silent)
		case "staging":
			dbLogger = gormLogger.Default.LogMode(gormLogger.Warn)
		default:
			dbLogger = gormLogger.Default.LogMode(gormLogger.Info)
		}

		gormConfig := &gorm.Config{
			Logger:      dbLogger,
			PrepareStmt: true,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		}

		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN: config.DatabaseConnectionString(),
		}), gormConfig)
		if err != nil {
			logger.GetLogger().Fatal("Failed to connect to database",
				zap.Error(err),
				zap.String("host", config.Database.Host),
				zap.Int("port", config.Database.Port),
				zap.String("database", config.Database.Name),
			)
		}

		sqlDB, err := db.DB()
		if err != nil {
			logger.GetLogger().Fatal("Failed to get DB instance",
				zap.Error(err),
			)
		}

		sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(config.Database.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(config.Database.ConnMaxIdleTime)

		if err := sqlDB.Ping(); err != nil {
			logger.GetLogger().Fatal("Failed to ping database",
				zap.Error(err),
			)
		}

		migrateStart := time.Now()
		if err := AutoMigrate(db); err != nil {
			logger.GetLogger().Fatal("Failed to auto-migrate database",
				zap.Error(err),
			)
		}

		if err := CreateAuthIndexes(db); err != nil {
			logger.GetLogger().Error("Failed to create indexes",
				zap.Error(err),
			)
			// Don't fail, just log the error
		}

		logger.GetLogger().Info("Database connected successfully",
			zap.String("host", config.Database.Host),
			zap.Int("port", config.Database.Port),
			zap.String("database", config.Database.Name),
			zap.Duration("connection_time_ms", time.Since(startTime)),
			zap.Duration("migration_time_ms", time.Since(migrateStart)),
		)
	})

	return db
}

// GetDB returns the initialized database handle.
func GetDB() *gorm.DB {
	return db
}
