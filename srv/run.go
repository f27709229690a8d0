package srv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/opd-ai/bookforge/logger"
	bookforge "github.com/opd-ai/bookforge/src"
	"github.com/opd-ai/bookforge/srv/auth"
	srvtls "github.com/opd-ai/bookforge/srv/tls"
	"github.com/opd-ai/bookforge/store"
)

// Build opens the database and wires every collaborator cfg enables.
func Build(cfg Config, log *logger.Logger) (*Server, error) {
	log = logger.OrNop(log)

	authSvc, err := auth.NewService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}

	deps := Deps{DB: db, Auth: authSvc}
	if cfg.ClaudeAPIKey != "" {
		claude := bookforge.NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeMaxRetries, log)
		deps.Generator = bookforge.NewGenerator(bookforge.NewCachedClient(claude, cfg.OutlineCacheTTL), claude, log)
	} else {
		log.Warn("CLAUDE_API_KEY not set, AI routes disabled")
	}
	if cfg.HordeAPIKey != "" {
		deps.Images = bookforge.NewHordeClient(cfg.HordeAPIKey)
	} else {
		log.Warn("HORDE_API_KEY not set, cover generation disabled")
	}
	return New(cfg, deps, log), nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, log *logger.Logger) error {
	log = logger.OrNop(log)
	s, err := Build(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()
	go s.jobs.Run(ctx, 15*time.Minute, time.Hour)

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: s,
	}
	errc := make(chan error, 1)
	go func() {
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			log.Info("server starting", "addr", server.Addr, "tls", true)
			errc <- srvtls.ListenAndServeTLS(server, cfg.TLSCert, cfg.TLSKey)
			return
		}
		log.Info("server starting", "addr", server.Addr, "tls", false)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
