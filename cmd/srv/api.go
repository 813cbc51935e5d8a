package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/soundtrail/backend/internal/middleware"
	"github.com/soundtrail/backend/pkg/prometheus"
	"github.com/soundtrail/backend/pkg/router"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadService(); err != nil {
		return err
	}

	s.loadRouter()

	handler := cors.New(cors.Options{
		AllowedOrigins:   s.configs.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.router.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.configs.ApiServer.Host, s.configs.ApiServer.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.After(middleware.Logger())
	s.router.After(middleware.Prometheus())

	s.router.Handle("/metrics", prometheus.NewHandler())

	// Public API
	publicRouter := s.router.Branch()
	{
		router.POST(publicRouter, "/auth/authorize", s.authDomain.Authorize)
		router.POST(publicRouter, "/auth/refresh", s.authDomain.Refresh)
		router.GET(publicRouter, "/auth/authorizationUrl", s.authDomain.GetAuthorizationURL)
	}

	// These following APIs need a valid access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate(s.verifier))
	{
		router.POST(authRouter, "/auth/logout", s.authDomain.Logout)
		router.GET(authRouter, "/user/me", s.userDomain.GetMe)
		router.GET(authRouter, "/dashboard/currentlyPlaying", s.dashboardDomain.GetCurrentlyPlaying)
		router.GET(authRouter, "/dashboard/listeningHistory", s.dashboardDomain.GetListeningHistory)
	}
}
