package main

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "widget:widget@tcp(localhost:3306)/widget_go?parseTime=true&multiStatements=true&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS merchants (
	  id CHAR(36) NOT NULL,
	  code VARCHAR(64) NOT NULL,
	  name VARCHAR(191) NOT NULL DEFAULT '',
	  shop_domain VARCHAR(191) NOT NULL,
	  form_type VARCHAR(16) NOT NULL DEFAULT 'full',
	  processor_base_url VARCHAR(255) NOT NULL,
	  relay_url VARCHAR(255) NOT NULL,
	  hook_secret VARCHAR(128) NOT NULL,
	  modal_asset_key VARCHAR(255) NOT NULL DEFAULT '',
	  api_key_hash VARCHAR(128) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_merchants_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS relay_journal (
	  id CHAR(36) NOT NULL,
	  session_id CHAR(36) NOT NULL,
	  merchant_code VARCHAR(64) NOT NULL,
	  cart_token VARCHAR(191) NOT NULL,
	  step VARCHAR(32) NOT NULL,
	  status VARCHAR(16) NOT NULL,
	  result_url VARCHAR(1024) NOT NULL DEFAULT '',
	  error_message TEXT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_relay_journal_session (session_id),
	  KEY ix_relay_journal_merchant (merchant_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ merchants table created successfully")
	log.Println("✓ relay_journal table created successfully")
}
