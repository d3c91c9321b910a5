package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/memeboard/memeboard-backend/audit"
	"github.com/memeboard/memeboard-backend/filestore"
	"github.com/memeboard/memeboard-backend/ingest"
	"github.com/memeboard/memeboard-backend/ledger"
	"github.com/memeboard/memeboard-backend/media"
	"github.com/memeboard/memeboard-backend/server"
	"github.com/memeboard/memeboard-backend/store"
	"github.com/memeboard/memeboard-backend/utils/config"
	"github.com/memeboard/memeboard-backend/utils/dotenv"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	cfg := config.FromEnv()

	db, err := store.GetDBConnection(cfg)
	if err != nil {
		panic("failed to connect to database: " + err.Error())
	}
	if err := store.AutoMigrate(db); err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	entityStore := store.NewEntityStore(db)

	fs, err := buildFileStore(cfg)
	if err != nil {
		panic("failed to build file store: " + err.Error())
	}

	svc := server.NewService(
		entityStore,
		fs,
		ledger.NewLedger(entityStore),
		audit.NewTrail(entityStore, fs),
		ingest.NewOrchestrator(entityStore, fs, media.NewPipeline(fs)),
	)

	// Default with the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	server.RegisterRoutes(router, svc, entityStore)

	Logger.LogV2.Info("===== Memeboard Server Started =====")
	router.Run(cfg.ServerAddr)
}

func buildFileStore(cfg config.Config) (filestore.FileStore, error) {
	if cfg.S3Bucket != "" {
		return filestore.NewS3FileStore(cfg.S3Bucket, cfg.S3Region)
	}
	return filestore.NewLocalFileStore(cfg.UploadDir)
}
