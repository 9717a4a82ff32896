package service

import (
	"context"
	"fmt"
	"time"
	"whoislookup/internal/config"
	"whoislookup/internal/lookup"
	"whoislookup/internal/utils"

	"golang.org/x/net/proxy"
)

// Engine is the part of *lookup.Engine the service layer depends on.
type Engine interface {
	Lookup(ctx context.Context, target string) (*lookup.Result, error)
}

// HistoryStore receives every successful lookup.
type HistoryStore interface {
	AddHistory(ctx context.Context, item string, res *lookup.Result) error
}

type WhoisService struct {
	Engine  Engine
	History HistoryStore
}

// NewWhoisService wires engine to an optional history store; pass a nil
// store to disable history.
func NewWhoisService(engine Engine, history HistoryStore) *WhoisService {
	return &WhoisService{Engine: engine, History: history}
}

func (s *WhoisService) Lookup(ctx context.Context, target string) (*lookup.Result, error) {
	start := time.Now()
	res, err := s.Engine.Lookup(ctx, target)
	observeLookup(target, err)
	if err != nil {
		utils.Log.Info("whois lookup failed",
			utils.Field("target", target), utils.Field("error", err.Error()))
		return nil, err
	}

	utils.Log.Info("whois lookup",
		utils.Field("target", res.Target),
		utils.Field("type", res.Type),
		utils.Field("servers", res.Servers()),
		utils.Field("duration", time.Since(start).String()))

	if s.History != nil {
		if herr := s.History.AddHistory(ctx, res.Target, res); herr != nil {
			utils.Log.Warn("failed to store lookup history",
				utils.Field("target", res.Target), utils.Field("error", herr.Error()))
		}
	}
	return res, nil
}

// BuildEngine assembles the querier stack described by cfg: transport
// backend, optional SOCKS5 proxy, optional fixed DNS resolver and metrics.
func BuildEngine(cfg *config.Config, dir *lookup.Directory) (*lookup.Engine, error) {
	dialer, err := NewDialer(cfg.Proxy, cfg.WhoisTimeout)
	if err != nil {
		return nil, err
	}

	var q lookup.Querier
	switch cfg.Backend {
	case config.BackendLikexian:
		var pd proxy.Dialer
		if d, ok := dialer.(proxy.Dialer); ok {
			pd = d
		}
		q = NewLibraryQuerier(pd, cfg.WhoisTimeout, cfg.WhoisPort)
	case config.BackendSocket, "":
		client := lookup.NewClient()
		client.Port = cfg.WhoisPort
		client.Timeout = cfg.WhoisTimeout
		client.ReadTimeout = cfg.WhoisReadTimeout
		client.Dialer = dialer
		if cfg.DNSResolver != "" {
			client.Resolve = NewDNSService(cfg.DNSResolver).LookupHost
		}
		q = client
	default:
		return nil, fmt.Errorf("unknown whois backend %q", cfg.Backend)
	}

	opts := []lookup.Option{lookup.WithLogger(utils.Log)}
	if cfg.PartialResults {
		opts = append(opts, lookup.WithPartialResults())
	}
	return lookup.NewEngine(dir, InstrumentQuerier(q), opts...), nil
}
