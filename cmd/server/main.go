package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pitlane/internal/auth"
	"pitlane/internal/cache"
	"pitlane/internal/config"
	"pitlane/internal/db"
	"pitlane/internal/handler"
	"pitlane/internal/model"
	"pitlane/internal/proxy"
	"pitlane/internal/repository"
	"pitlane/internal/router"
	"pitlane/internal/service"
)

func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.TokenLifetime)
	f1Proxy := proxy.New(cfg.F1APIBaseURL, cfg.F1APITimeout, cacheClient, cfg.F1CacheTTL)

	authService := service.NewAuthService(userRepo, tokenService)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	f1Handler := handler.NewF1Handler(f1Proxy)

	router.Register(e, tokenService, authHandler, userHandler, f1Handler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
