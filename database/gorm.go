package database

import (
	"fmt"
	"time"

	"github.com/igtharvillage/thar-api/config"
	"github.com/igtharvillage/thar-api/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the lifecycle surface the application needs from a database
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() *gorm.DB
}

type GORMStore struct {
	db  *gorm.DB
	dsn string
}

// DSN builds the Postgres connection string from the environment
func DSN(env *config.EnvironmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnvironmentVariable) (*GORMStore, error) {
	dsn := DSN(env)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		zap.S().Errorf("[DB] unable to connect to PostgreSQL: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.S().Info("[DB] connected to PostgreSQL")

	return &GORMStore{db: db, dsn: dsn}, nil
}

// NewGORMStore wraps an already opened connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	zap.S().Infof("[DB] running AutoMigrate for %d models", len(model.Tables))

	if err := s.db.AutoMigrate(model.Tables...); err != nil {
		zap.S().Errorf("[DB] AutoMigrate failed: %v", err)
		return err
	}

	zap.S().Info("[DB] AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	zap.S().Info("[DB] closing PostgreSQL connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in repositories/handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// DataSourceName returns the DSN the store was opened with, empty when the
// connection was supplied by the caller
func (s *GORMStore) DataSourceName() string {
	return s.dsn
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
