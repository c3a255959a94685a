package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	BackupDir         string
	BlobDriver        string
	BlobFSRoot        string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PathStyle       bool
	LowStockThreshold int
	LogLevel          string
	LogFile           string
	TestMode          bool
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/pjourney.db"),
		BackupDir:         getEnv("BACKUP_DIR", "/data/backups"),
		BlobDriver:        getEnv("BLOB_DRIVER", "fs"),
		BlobFSRoot:        getEnv("BLOB_FS_ROOT", "/data/cloud"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PathStyle:       os.Getenv("S3_PATH_STYLE") == "1",
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 2),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		TestMode:          os.Getenv("PJOURNEY_TEST_MODE") == "1",
	}

	// Test mode keeps cloud sync in memory so no backup leaves the machine.
	if cfg.TestMode {
		cfg.BlobDriver = "memory"
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
