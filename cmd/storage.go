package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/config"
	blockerRepo "github.com/m04kA/SMC-CarWashService/internal/infra/storage/blocker"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/migrations"
	reservationRepo "github.com/m04kA/SMC-CarWashService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
	blockersService "github.com/m04kA/SMC-CarWashService/internal/service/blockers"
	reservationsService "github.com/m04kA/SMC-CarWashService/internal/service/reservations"
	admitReservationUC "github.com/m04kA/SMC-CarWashService/internal/usecase/admit_reservation"
	"github.com/m04kA/SMC-CarWashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
	"github.com/m04kA/SMC-CarWashService/pkg/metrics"
	"github.com/m04kA/SMC-CarWashService/pkg/txmanager"
)

// reservationStore все операции над резервациями, нужные сервисам и use cases
type reservationStore interface {
	admitReservationUC.ReservationRepository
	availability.ReservationAggregates
	reservationsService.ReservationRepository
}

// blockerStore все операции над периодами закрытия
type blockerStore interface {
	blockersService.BlockerRepository
	availability.BlockerReader
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	reservations reservationStore
	blockers     blockerStore
	tx           txManager
	close        func() error
}

// openStorage выбирает хранилище по database.driver
func openStorage(cfg *config.Config, loc *time.Location, m *metrics.Metrics, log *logger.Logger, stopCh <-chan struct{}) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage: data is lost on restart")
		return &storage{
			reservations: memory.NewReservationStore(loc),
			blockers:     memory.NewBlockerStore(),
			tx:           memory.NewTxManager(),
			close:        func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	var wrapped *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrapped = dbmetrics.WrapWithDefault(db, m, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrapped = dbmetrics.Wrap(db, nil, cfg.Metrics.ServiceName)
	}

	return &storage{
		reservations: reservationRepo.NewRepository(wrapped, loc),
		blockers:     blockerRepo.NewRepository(wrapped, loc),
		tx:           txmanager.NewTransactionManager(wrapped),
		close:        db.Close,
	}, nil
}
