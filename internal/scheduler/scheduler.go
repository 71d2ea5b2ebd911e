// Package scheduler периодические задачи сервиса поверх gocron
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

const slotFillJobName = "slot-fill-gauges"

var (
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
	ErrRefresh         = errors.New("scheduler: refresh slot fill")
)

// Scheduler обновляет метрики заполненности слотов по расписанию
type Scheduler struct {
	scheduler gocron.Scheduler
	source    SlotFillSource
	gauges    GaugeRecorder
	interval  time.Duration
	logger    Logger

	stopOnce sync.Once
	stopErr  error
}

// New создает планировщик и регистрирует задачу обновления заполненности
func New(source SlotFillSource, gauges GaugeRecorder, interval time.Duration, logger Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("Scheduler job %s (%s) panicked: %v", jobName, jobID, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: sched,
		source:    source,
		gauges:    gauges,
		interval:  interval,
		logger:    logger,
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run),
		gocron.WithName(slotFillJobName),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("add %s job: %w", slotFillJobName, err)
	}

	logger.Info("Scheduler job %s registered (interval=%s)", slotFillJobName, interval)
	return s, nil
}

// Start запускает задачи
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler starting")
	s.scheduler.Start()
}

// Stop останавливает планировщик, повторные вызовы безопасны
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if err := s.RefreshSlotFill(ctx); err != nil {
		s.logger.Error("Scheduler job %s failed: %v", slotFillJobName, err)
	}
}

// RefreshSlotFill пересчитывает заполненность слотов на сегодня и завтра
func (s *Scheduler) RefreshSlotFill(ctx context.Context) error {
	today := domain.DateOf(s.source.Now())

	for _, date := range []time.Time{today, today.AddDate(0, 0, 1)} {
		fills, err := s.source.SlotFillPercentage(ctx, date)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRefresh, date.Format(domain.DateFormat), err)
		}

		key := date.Format(domain.DateFormat)
		for _, fill := range fills {
			s.gauges.SetSlotFill(key, fill.StartTime.Hour(), fill.Percentage)
		}
		s.logger.Debug("Slot fill refreshed for %s (%d slots)", key, len(fills))
	}

	return nil
}
