package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file for local runs. DATABASE_URL and REDIS_ADDR are
// optional: when absent the corresponding in-memory store is used.
type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string

	DatabaseURL string
	RedisAddr   string
	CartTTL     time.Duration

	MapsAPIKey        string
	RestaurantAddress string
	RestaurantLat     float64
	RestaurantLng     float64
}

func Load() (*Config, error) {
	// Missing .env is fine; containers pass plain environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:       getenv("SERVICE_NAME", "ub-ejr-eats"),
		Env:               getenv("ENV", "dev"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		MapsAPIKey:        os.Getenv("MAPS_API_KEY"),
		RestaurantAddress: getenv("RESTAURANT_ADDRESS", "51 rue Blaise Pascal, 35170 Bruz"),
	}

	ttl, err := time.ParseDuration(getenv("CART_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config: parse CART_TTL: %w", err)
	}
	cfg.CartTTL = ttl

	cfg.RestaurantLat, err = getFloat("RESTAURANT_LAT", 48.050245)
	if err != nil {
		return nil, err
	}
	cfg.RestaurantLng, err = getFloat("RESTAURANT_LNG", -1.741515)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return f, nil
}
