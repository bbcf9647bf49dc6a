package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/educenter-backend/config"
	"github.com/vnkhanh/educenter-backend/controllers"
	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/routes"
	"github.com/vnkhanh/educenter-backend/services"
	"github.com/vnkhanh/educenter-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := logger.InitLogger(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := config.InitRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatalf("init redis: %v", err)
	}

	var otp services.OTPStore = services.NewMemoryOTPStore()
	if rdb != nil {
		otp = services.NewRedisOTPStore(rdb)
	}

	var mailer utils.Mailer = utils.LogMailer{}
	if cfg.Mail.Enabled {
		mailer = utils.NewSMTPMailer(cfg.Mail)
	}

	var storage utils.Storage
	switch cfg.Upload.Driver {
	case "supabase":
		storage = utils.NewSupabaseStorage(cfg.Upload.SupabaseURL, cfg.Upload.SupabaseKey, cfg.Upload.Bucket)
	default:
		local, err := utils.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.URLPrefix)
		if err != nil {
			logger.Fatalf("init storage: %v", err)
		}
		storage = local
	}

	if err := controllers.RegisterValidators(); err != nil {
		logger.Fatalf("register validators: %v", err)
	}

	jwt := utils.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpire, cfg.JWT.RefreshExpire, cfg.JWT.Issuer)

	r := gin.New()
	routes.SetupRouter(r, routes.Dependencies{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		JWT:     jwt,
		Mailer:  mailer,
		Storage: storage,
		OTP:     otp,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
