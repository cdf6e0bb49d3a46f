package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/jmehdipour/enroll-gateway/internal/db"
	httpSrv "github.com/jmehdipour/enroll-gateway/internal/http"
	"github.com/jmehdipour/enroll-gateway/internal/logger"
	"github.com/jmehdipour/enroll-gateway/internal/service/intake"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log, err := logger.New(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		// sqlite is the zero-setup default, so its schema is created on start
		if cfg.Store.Driver == config.DriverSQLite {
			if err := st.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("sqlite migrate: %w", err)
			}
		}

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		if redisClient != nil {
			defer func() { _ = redisClient.Close() }()
		}

		notifier, closeNotifier, err := buildNotifier(cfg.SMS)
		if err != nil {
			return fmt.Errorf("sms: %w", err)
		}
		defer func() { _ = closeNotifier() }()

		svc := intake.New(st.repo, notifier, log.Named("intake"), intake.Options{
			RequireTelephone: cfg.Intake.RequireTelephone,
			SMSTimeout:       cfg.SMS.Timeout,
		})

		server := httpSrv.NewServer(cfg, httpSrv.Deps{
			Intake: svc,
			Repo:   st.repo,
			Redis:  redisClient,
			Log:    log.Named("http"),
		})

		log.Info("starting",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("sms", cfg.SMS.Enabled),
			zap.Bool("rate_limit", redisClient != nil && cfg.RateLimit.RPS > 0),
		)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
