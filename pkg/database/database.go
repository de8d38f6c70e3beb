package database

import (
	"fmt"
	"log"

	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the MySQL connection and, when migrate is set, applies the
// schema and seeds the tool catalog. Release deployments migrate only with
// the -migrate flag.
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")

		if err := SeedToolCatalog(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate applies the schema. Separated from InitDB so tests can run it
// against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.AssessmentTool{},
		&model.Domain{},
		&model.SignallingQuestion{},
		&model.Project{},
		&model.Study{},
		&model.Assessment{},
		&model.DomainAssessment{},
		&model.QuestionResponse{},
		&model.AssessmentExport{},
	)
}
