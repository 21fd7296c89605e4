package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mosbot.dev/web/internal/authsetup"
	"mosbot.dev/web/internal/config"
	"mosbot.dev/web/internal/devproxy"
	"mosbot.dev/web/internal/document"
	"mosbot.dev/web/internal/i18n"
	"mosbot.dev/web/internal/logging"
	mw "mosbot.dev/web/internal/middleware"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tr, err := i18n.Init(i18n.Config{
		Default:   cfg.Language,
		Current:   cfg.Language,
		Supported: []string{cfg.Language},
		Locale:    cfg.Locale,
	})
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	document.Setup(document.Attributes{Dir: tr.Dir(), Lang: tr.Lang()})

	useLogin := resolveLogin(ctx, cfg, logger)
	a, err := newApp(appConfig{
		Logger:   logger,
		Bundle:   tr,
		Doc:      document.Get(),
		Variant:  cfg.Variant(),
		UseLogin: useLogin,
	})
	if err != nil {
		return err
	}

	switch cmd {
	case "serve":
		return serve(ctx, cfg, a, args)
	case "build":
		return build(ctx, cfg, a, args)
	default:
		return fmt.Errorf("unknown command %q (want serve or build)", cmd)
	}
}

// resolveLogin settles the login capability once at startup.
func resolveLogin(ctx context.Context, cfg config.Config, logger *zap.Logger) bool {
	explicit, err := cfg.LoginOverride()
	if err != nil {
		logger.Warn("invalid login override; deferring to backend", zap.Error(err))
		explicit = nil
	}
	backend := cfg.BackendURL
	if backend == "" && explicit == nil && cfg.ProxyEnabled() {
		backend = devproxy.DefaultTarget
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	use, err := authsetup.UseLogin(fetchCtx, explicit, nil, backend)
	if err != nil {
		logger.Warn("auth setup unavailable; login disabled", zap.String("backend", backend), zap.Error(err))
	}
	return use
}

func serve(ctx context.Context, cfg config.Config, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.ListenAddr(), "HTTP listen address")
	pub := fs.String("public", cfg.PublicDir, "public assets directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assets := mw.NewAssets(filepath.Join(*pub, "assets"))
	if cfg.Dev {
		if err := assets.Watch(ctx, a.logger.Named("assets")); err != nil {
			a.logger.Warn("asset watcher disabled", zap.Error(err))
		}
	}

	var proxy http.Handler
	if cfg.ProxyEnabled() {
		p, err := devproxy.New(cfg.BackendURL, a.logger.Named("proxy"))
		if err != nil {
			return err
		}
		proxy = p
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(a, routerOptions{Assets: assets, Proxy: proxy}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverLogger := a.logger.Named("http").With(zap.String("addr", *addr))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("web listening",
			zap.Bool("dev", cfg.Dev),
			zap.Bool("proxy", proxy != nil),
			zap.String("layout", string(a.variant)),
			zap.Bool("login", a.useLogin),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
