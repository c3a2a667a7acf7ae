package main

import (
	"log"

	"github.com/zemenplay/bingo-backend/config"
)

func main() {
	config.LoadEnv()
	db := config.SetupDatabase() // connects + migrates
	_ = db
	log.Println("✅ Database migration completed successfully")
}
