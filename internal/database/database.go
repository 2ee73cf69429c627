package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
)

// Connect opens the MySQL mirror and migrates the schema.
func Connect(dsn string, dev bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if dev {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: unwrap: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.MenuGroupModel{},
		&models.CategoryModel{},
		&models.DishModel{},
		&models.DishStockModel{},
		&models.AddonGroupModel{},
		&models.AddonItemModel{},
		&models.BannerModel{},
		&models.ThemeModel{},
		&models.SiteLinkModel{},
		&models.StaffModel{},
		&models.TableModel{},
		&models.SettingsModel{},
		&models.UpstreamLogModel{},
	); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
