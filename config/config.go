package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings. Values come from the environment
// with a .env file as optional local override.
type Config struct {
	ServerPort        string
	DBPath            string
	TesseractDataPath string
	LLMAPIBase        string
	LLMAPIKey         string
	LLMModel          string
	LLMAllowStub      bool
	MaxFileSize       int64
	MinTextLength     int
	MaxOCRPages       int
	MaxLabelDistance  int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "data/invoices.db"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata"),
		LLMAPIBase:        getEnv("LLM_API_BASE", "https://api.groq.com/openai/v1"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMAllowStub:      getEnvBool("LLM_ALLOW_STUB", true),
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
		MinTextLength:     getEnvInt("MIN_TEXT_LENGTH", 40),
		MaxOCRPages:       getEnvInt("MAX_OCR_PAGES", 10),
		MaxLabelDistance:  getEnvInt("MAX_LABEL_DISTANCE", 80),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s, using default %t", key, fallback)
	}
	return fallback
}
