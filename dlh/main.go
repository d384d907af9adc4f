package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dlh/dlh/config"
	"dlh/dlh/controllers"
	"dlh/dlh/routes"
	"dlh/dlh/services/llm"
	"dlh/dlh/services/prompt"
	"dlh/dlh/services/scraper"
	"dlh/dlh/sources/psql"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/storage"
	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.ErrorLogger.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}
	tutor, err := config.LoadTutorConfig(cfg.TutorConfigPath)
	if err != nil {
		logging.ErrorLogger.Error("tutor config error", zap.Error(err))
		os.Exit(1)
	}
	courses, err := prompt.NewCoursePrompts(tutor.CoursePromptMap())
	if err != nil {
		logging.ErrorLogger.Error("course prompt table error", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	profileDAO := dao.NewProfileDAO(db.DB)
	roleDAO := dao.NewRoleDAO(db.DB)
	courseDAO := dao.NewCourseDAO(db.DB)
	chatDAO := dao.NewChatDAO(db.DB)
	imageDAO := dao.NewImageDAO(db.DB)
	settingDAO := dao.NewSettingDAO(db.DB)

	if cfg.Gateway.APIKey == "" {
		logging.AppLogger.Warn("AI gateway key is not set; chat and image requests will fail")
	}
	gateway := llm.NewGatewayClient(cfg.Gateway, nil)
	images := llm.NewImageClient(cfg.Gateway)
	assembler := prompt.NewAssembler(tutor.BasePrompt, settingDAO, courses)

	handler := routes.NewRouter(routes.Controllers{
		Health: controllers.NewHealthController(map[string]controllers.Pinger{
			"db": func(ctx context.Context) error {
				sqlDB, err := db.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}),
		Auth:   controllers.NewAuthController(profileDAO, cfg),
		User:   controllers.NewUserController(profileDAO, roleDAO, chatDAO, imageDAO, minioClient),
		Course: controllers.NewCourseController(courseDAO, tutor.Courses),
		Chat:   controllers.NewChatController(gateway, assembler, chatDAO, cfg.JWTSecret),
		Image:  controllers.NewImageController(imageDAO, images, minioClient),
		Admin:  controllers.NewAdminController(profileDAO, roleDAO, settingDAO, scraper.NewScraper(nil, scraper.Options{})),
		Roles:  roleDAO,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
