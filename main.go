package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "library-backend/docs"
	"library-backend/internal/circulation/borrows"
	"library-backend/internal/circulation/copies"
	"library-backend/internal/circulation/reservations"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/logger"
)

func main() {
	// 設定読み込み（.env があれば秘密情報を上書き）
	cfg, err := db.LoadConfig(db.ConfigFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Mode)
	defer func() { _ = log.Sync() }()
	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("version", cfg.Version))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer conn.Close()

	// スキーマ適用
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx, conn); err != nil {
		cancel()
		log.Fatal("migration failed", zap.Error(err))
	}
	ver, err := db.Version(ctx, conn)
	cancel()
	if err != nil {
		log.Fatal("migration version unknown", zap.Error(err))
	}
	log.Info("connected to DB", zap.String("dbname", cfg.DB.DBName), zap.Int64("schema_version", ver))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logger.GinMiddleware(log), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(auth.NewStore(conn), secret, cfg.Auth.TokenTTL)

	// /api/v1
	api := r.Group("/api/v1")
	student := api.Group("", auth.RequireAuth(secret), auth.RequireRole(auth.RoleStudent))
	staff := api.Group("", auth.RequireAuth(secret), auth.RequireRole(auth.RoleStaff))

	auth.RegisterRoutes(api, staff, authSvc)
	copies.RegisterRoutes(staff, copies.NewService(conn, log))
	borrows.RegisterRoutes(student, borrows.NewService(conn, log))
	reservations.RegisterRoutes(student, staff, reservations.NewService(conn, log))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// TLS設定
	certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Cert)
	keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Key)

	go func() {
		log.Info("listening", zap.String("addr", "https://0.0.0.0"+cfg.Server.Addr))
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
