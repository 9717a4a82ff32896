package service

import (
	"context"
	"whoislookup/internal/utils"

	"github.com/robfig/cron/v3"
)

// MonitoredItems lists the targets the scheduler re-checks.
type MonitoredItems interface {
	GetMonitoredItems(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	Cron     *cron.Cron
	Items    MonitoredItems
	Monitor  *MonitorService
	Schedule string
}

func NewScheduler(items MonitoredItems, monitor *MonitorService, schedule string) *Scheduler {
	if schedule == "" {
		schedule = "0 2 * * *"
	}
	return &Scheduler{
		Cron:     cron.New(),
		Items:    items,
		Monitor:  monitor,
		Schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.Cron.AddFunc(s.Schedule, s.RunMonitorJob); err != nil {
		return err
	}
	s.Cron.Start()
	utils.Log.Info("scheduler started", utils.Field("schedule", s.Schedule))
	return nil
}

// Stop halts the cron and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.Cron.Stop()
}

// RunMonitorJob checks every monitored item, one lookup at a time.
func (s *Scheduler) RunMonitorJob() {
	ctx := context.Background()
	items, err := s.Items.GetMonitoredItems(ctx)
	if err != nil {
		utils.Log.Error("scheduler error getting items", utils.Field("error", err.Error()))
		return
	}
	for _, item := range items {
		if err := s.Monitor.RunCheck(ctx, item); err != nil {
			utils.Log.Warn("scheduled check failed", utils.Field("item", item), utils.Field("error", err.Error()))
		}
	}
}
