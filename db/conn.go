// Package db opens the configured database and keeps the schema current
package db

import (
	"fmt"
	"os"

	"atb/news-api/internal/model"
	"atb/news-api/pkg/util"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	dsn := viper.GetString("db.dsn")

	switch viper.GetString("db.driver") {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		// If running in a docker container don't allow the sqlite file to be
		// created. The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); err != nil {
				if os.IsNotExist(err) {
					return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
				}
			}
		}

		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.News{}, model.Comment{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
