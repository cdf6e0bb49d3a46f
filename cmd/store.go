package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/jmehdipour/enroll-gateway/internal/db"
	"github.com/jmehdipour/enroll-gateway/internal/kafka"
	"github.com/jmehdipour/enroll-gateway/internal/notify"
	"github.com/jmehdipour/enroll-gateway/internal/repository"
)

// store is the enrollment repository selected by store.driver.
type store struct {
	repo  repository.EnrollmentsRepository
	sql   *repository.EnrollmentsRepositoryImpl // nil for the file driver
	close func() error
}

func openStore(cfg config.StoreConfig) (*store, error) {
	if cfg.Driver == config.DriverFile {
		return &store{
			repo:  repository.NewFileEnrollmentsRepository(cfg.FilePath),
			close: func() error { return nil },
		}, nil
	}

	sqlDB, err := db.NewSQLConnection(cfg.Driver, cfg.Database.DSN, db.SQLOpts{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		PingTimeout:     cfg.Database.PingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Driver, err)
	}

	repo := repository.NewEnrollmentsRepository(sqlDB)
	return &store{repo: repo, sql: repo, close: sqlDB.Close}, nil
}

// migrate creates the schema; the file driver has none.
func (s *store) migrate(ctx context.Context) error {
	if s.sql == nil {
		return nil
	}
	return s.sql.Migrate(ctx)
}

// buildNotifier wires the configured SMS transport. The returned closer is
// never nil.
func buildNotifier(cfg config.SMSConfig) (notify.Notifier, func() error, error) {
	nop := func() error { return nil }
	if !cfg.Enabled {
		return notify.Noop{}, nop, nil
	}

	switch cfg.Transport {
	case config.TransportKafka:
		producer := kafka.NewProducerFromConfig(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		return notify.NewKafkaNotifier(producer, cfg.Kafka.Topic), producer.Close, nil

	case config.TransportHTTP:
		var provs []notify.Provider
		for _, pc := range cfg.Providers {
			if !pc.Enabled {
				continue
			}
			provs = append(provs, notify.NewHTTPProvider(notify.HTTPProviderOpts{
				Name:          pc.Name,
				BaseURL:       pc.BaseURL,
				Path:          pc.Path,
				APIKey:        pc.APIKey,
				TimeoutMs:     pc.TimeoutMs,
				FailThreshold: pc.Breaker.FailThreshold,
				OpenForMs:     pc.Breaker.OpenForMs,
			}))
		}
		if len(provs) == 0 {
			return nil, nil, errors.New("sms enabled but no provider is enabled")
		}
		return notify.NewDispatcher(provs), nop, nil

	default:
		return nil, nil, fmt.Errorf("unknown sms transport %q", cfg.Transport)
	}
}
