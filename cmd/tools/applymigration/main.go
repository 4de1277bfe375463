package main

import (
	"fmt"
	"log"
	"os"
	"strings"

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

	addCol := func(sql string) {
		if err := db.Exec(sql).Error; err != nil {
			// Error 1060: Duplicate column name — already applied
			if !strings.Contains(err.Error(), "Error 1060") {
				log.Fatalf("Failed: %v", err)
			}
		}
	}

	addCol(`ALTER TABLE merchants ADD COLUMN modal_asset_key VARCHAR(255) NOT NULL DEFAULT '' AFTER hook_secret`)
	addCol(`ALTER TABLE merchants ADD COLUMN name VARCHAR(191) NOT NULL DEFAULT '' AFTER code`)
	addCol(`ALTER TABLE relay_journal ADD COLUMN cart_token VARCHAR(191) NOT NULL DEFAULT '' AFTER merchant_code`)

	fmt.Println("✓ Merchant asset and journal columns added successfully!")
}
