package service

import (
	"context"
	"fmt"
	"whoislookup/internal/lookup"
	"whoislookup/internal/utils"
)

type MonitorService struct {
	Whois *WhoisService
}

func NewMonitorService(w *WhoisService) *MonitorService {
	return &MonitorService{Whois: w}
}

// RunCheck looks item up again so its history gains a new entry when the
// registry data changed.
func (m *MonitorService) RunCheck(ctx context.Context, item string) error {
	if lookup.Classify(item) == lookup.KindInvalid {
		utils.Log.Warn("invalid target for scheduled check", utils.Field("item", item))
		return fmt.Errorf("%w: %q", lookup.ErrInvalidTarget, item)
	}
	utils.Log.Info("running scheduled check", utils.Field("item", item))

	if _, err := m.Whois.Lookup(ctx, item); err != nil {
		return err
	}

	utils.Log.Info("finished check", utils.Field("item", item))
	return nil
}
