package config

import (
	"os"
)

// Config is the explicit configuration of the content core, built once
// from the environment at startup and passed into constructors. No
// package reads the environment after this point.
type Config struct {
	// UploadDir is the local blob store root for originals. Thumbnails
	// live under its "thumbnails" prefix.
	UploadDir string

	// S3Bucket, when set, switches the blob store to S3.
	S3Bucket string
	S3Region string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	// ServerAddr is the listen address of the HTTP layer.
	ServerAddr string
}

func FromEnv() Config {
	cfg := Config{
		UploadDir:  getenvDefault("MEMEBOARD_UPLOAD_DIR", "uploads"),
		S3Bucket:   os.Getenv("MEMEBOARD_S3_BUCKET"),
		S3Region:   getenvDefault("MEMEBOARD_S3_REGION", "us-west-1"),
		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPass:     os.Getenv("DB_PASS"),
		DBName:     getenvDefault("DB_NAME", "memeboard"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		ServerAddr: getenvDefault("MEMEBOARD_ADDR", ":8080"),
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
