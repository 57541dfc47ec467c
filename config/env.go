package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis      RedisConfig
	DB         DBConfig
	Server     ServerConfig
	Withdrawal WithdrawalConfig
}

type DBConfig struct {
	DSN string
}

type ServerConfig struct {
	Port string
}

type WithdrawalConfig struct {
	// MinAmount is the smallest amount an agent may request, as a decimal string.
	MinAmount string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN: getEnv("DATABASE_DSN", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Withdrawal: WithdrawalConfig{
			MinAmount: getEnv("WITHDRAWAL_MIN_AMOUNT", "50.00"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
