// db/init_db.go
package db

import (
	"log"

	"github.com/Yarikttyui/pinkmessik/config"
	"github.com/Yarikttyui/pinkmessik/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg config.Config) {
	var (
		conn *gorm.DB
		err  error
	)

	switch cfg.DBDriver {
	case "sqlite":
		conn, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
		if err != nil {
			log.Fatalf("InitDB: failed to open sqlite DB at %s: %v", cfg.DBPath, err)
		}
	default:
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
		if err != nil {
			log.Fatalf("InitDB: failed to connect to postgres DB: %v", err)
		}
		if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			log.Fatalf("InitDB: failed to enable uuid-ossp: %v", err)
		}
	}

	DB = conn
	log.Printf("Connected & configured %s DB", cfg.DBDriver)

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.ConversationMember{},
		&models.Message{},
	); err != nil {
		log.Fatalf("InitDB: auto-migration failed: %v", err)
	}
}
