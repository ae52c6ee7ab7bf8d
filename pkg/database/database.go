package database

import (
	"fmt"

	"property-service/internal/model"
	"property-service/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the connection for the configured driver and applies pool settings
func InitDB(dbConfig *config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case "mysql":
		dialector = mysql.Open(dbConfig.GetDSN())
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if err := setupJoinTables(db); err != nil {
		return nil, err
	}

	log.Info("Database connected successfully",
		zap.String("driver", dbConfig.Driver),
		zap.String("db_host", dbConfig.Host),
		zap.String("db_name", dbConfig.DBName))

	return db, nil
}

// setupJoinTables registers the join models so gorm uses them for the
// many2many associations instead of generating its own.
func setupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Property{}, "Amenities", &model.PropertyAmenity{}); err != nil {
		return fmt.Errorf("failed to set up amenity join table: %w", err)
	}
	if err := db.SetupJoinTable(&model.Property{}, "HouseRules", &model.PropertyHouseRule{}); err != nil {
		return fmt.Errorf("failed to set up house rule join table: %w", err)
	}
	return nil
}

// Migrate creates or updates the schema of every table the property aggregate spans
func Migrate(db *gorm.DB) error {
	if err := setupJoinTables(db); err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Amenity{},
		&model.HouseRule{},
		&model.Property{},
		&model.PropertyImage{},
		&model.PropertySpecifications{},
		&model.PropertyDetailedLocation{},
		&model.PropertyAmenity{},
		&model.PropertyHouseRule{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// Ping checks the underlying connection
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
