package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultCommissionRate  = 0.15
	DefaultEventMultiplier = 1.0
)

// Stakes lists the entry fees (in birr) for which rooms are opened.
var Stakes = []int{10, 20, 50, 100}

// LoadEnv loads .env file and validates required vars
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}
}

// PrizeSettings returns the current commission rate and event multiplier.
// These are re-read on every call so a promotion pushed mid-round applies
// to the settlement of that round.
func PrizeSettings() (commission, multiplier float64) {
	commission = envFloat("COMMISSION_RATE", DefaultCommissionRate)
	multiplier = envFloat("EVENT_MULTIPLIER", DefaultEventMultiplier)
	return commission, multiplier
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %.2f", key, raw, fallback)
		return fallback
	}
	return v
}
