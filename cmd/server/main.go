package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"careerdesk/internal/app"
	"careerdesk/internal/auth"
	"careerdesk/internal/config"
	apphttp "careerdesk/internal/http"
	"careerdesk/internal/logging"
	"careerdesk/internal/reconciler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("build application: %v", err)
	}
	defer a.Close()

	var rec reconciler.Reconciler
	if cfg.Reconciler.Enabled && a.Gateway != nil {
		rec = reconciler.New(reconciler.Config{
			Interval:      cfg.Reconciler.Interval,
			StaleAfter:    cfg.Reconciler.StaleAfter,
			MaxConcurrent: cfg.Reconciler.MaxConcurrent,
			Logger:        logger,
		}, a.Payments)
		if err := rec.Start(ctx); err != nil {
			logger.Fatalf("start reconciler: %v", err)
		}
		if err := rec.Resume(ctx); err != nil {
			logger.Warnf("resume open payments: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(logger))

	handler := apphttp.NewHandler(apphttp.Services{
		Users:     a.Users,
		Blogs:     a.Blogs,
		Packages:  a.Packages,
		Inquiries: a.Inquiries,
		Orders:    a.Orders,
		Payments:  a.Payments,
	}, apphttp.Options{
		Issuer:         auth.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute),
		Storage:        a.Storage,
		Reconciler:     rec,
		Reports:        a.Reports,
		URLExpiry:      time.Duration(cfg.Storage.URLExpiryMinutes) * time.Minute,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		FrontendURL:    cfg.Server.FrontendURL,
		Logger:         logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if rec != nil {
		rec.Shutdown()
	}

	logger.Info("bye")
}
