// Package main runs the gameplay analysis HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gameplay-insights/backend/config"
	"github.com/gameplay-insights/backend/internal/agent"
	"github.com/gameplay-insights/backend/internal/analysis"
	"github.com/gameplay-insights/backend/internal/conversation"
	"github.com/gameplay-insights/backend/internal/middleware"
	"github.com/gameplay-insights/backend/internal/query"
	"github.com/gameplay-insights/backend/internal/store"
	"github.com/gameplay-insights/backend/internal/videos"
	"github.com/gameplay-insights/backend/pkg/response"
	"github.com/gameplay-insights/backend/pkg/storage"
	"github.com/gameplay-insights/backend/pkg/tasks"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	awsCfg, err := storage.LoadAWSConfig(ctx, storage.Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Bucket:          cfg.AWS.Bucket,
	}, logger)
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}
	s3Client := storage.New(awsCfg, cfg.AWS.Bucket, logger)

	runner := analysis.NewRunner(
		bedrockdataautomationruntime.NewFromConfig(awsCfg),
		s3Client,
		analysis.RunnerConfig{
			Region:            cfg.AWS.Region,
			Bucket:            cfg.AWS.Bucket,
			DefaultProjectARN: cfg.Bedrock.ProjectARN,
			ProfileARN:        cfg.Bedrock.ProfileARN,
			PollInterval:      cfg.Analysis.PollInterval,
			MaxWait:           cfg.Analysis.MaxWait,
		},
		logger,
	)

	agentClient := agent.New(awsCfg, cfg.Bedrock.AgentID, cfg.Bedrock.AgentAliasID, logger)
	if !agentClient.Configured() {
		logger.Warn("bedrock agent not configured, question answering uses the keyword responder")
	}

	videoStore := store.NewVideoStore()
	sessionStore := store.NewSessionStore()
	background := tasks.NewRunner(logger)

	videoHandler := videos.NewHandler(videoStore, s3Client, runner, background, cfg.Analysis.Mode, logger)
	conversationHandler := conversation.NewHandler(sessionStore, videoStore, agentClient, logger)
	queryHandler := query.NewHandler(videoStore, s3Client, agentClient, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	health := func(c *gin.Context) {
		response.OK(c, gin.H{
			"status":          "ok",
			"agentConfigured": agentClient.Configured(),
			"analysisMode":    cfg.Analysis.Mode,
			"trackedVideos":   videoStore.Len(),
			"activeSessions":  sessionStore.Len(),
		})
	}
	router.GET("/", health)
	router.GET("/health", health)

	api := router.Group("/api")
	{
		api.POST("/video/upload-url", videoHandler.UploadURL)
		api.POST("/video/analyze/:id", videoHandler.Analyze)
		api.GET("/video/status/:id", videoHandler.Status)
		api.GET("/videos", videoHandler.List)

		// Legacy route kept for older clients.
		api.POST("/analyze-video/:id", videoHandler.Analyze)

		api.POST("/agent/conversation/start", conversationHandler.Start)
		api.POST("/agent/conversation/message", conversationHandler.Message)
		api.POST("/agent/conversation/end", conversationHandler.End)

		api.POST("/query/ask", queryHandler.Ask)
		api.POST("/query/search", queryHandler.SearchContent)
		api.GET("/query/summary/:videoId", queryHandler.Summary)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	// Let in-flight analysis tasks persist their final state.
	background.Wait()
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
