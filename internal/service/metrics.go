package service

import (
	"context"
	"errors"
	"time"
	"whoislookup/internal/lookup"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whois_lookups_total",
			Help: "Lookups handled, by target type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	serverQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whois_server_queries_total",
			Help: "Queries sent to individual WHOIS servers, by outcome.",
		},
		[]string{"server", "outcome"},
	)

	serverQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whois_server_query_duration_seconds",
			Help:    "Time spent on one WHOIS server query.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server"},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, serverQueriesTotal, serverQueryDuration)
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lookup.ErrInvalidTarget):
		return "invalid"
	case errors.Is(err, lookup.ErrNoServer):
		return "no_server"
	case lookup.IsTransport(err):
		return "transport_error"
	default:
		return "error"
	}
}

func observeLookup(target string, err error) {
	lookupsTotal.WithLabelValues(lookup.Classify(target).String(), lookupOutcome(err)).Inc()
}

type instrumentedQuerier struct {
	next lookup.Querier
}

// InstrumentQuerier records per-server counts and latencies for q.
func InstrumentQuerier(q lookup.Querier) lookup.Querier {
	return &instrumentedQuerier{next: q}
}

func (q *instrumentedQuerier) Query(ctx context.Context, target, server string) (string, error) {
	start := time.Now()
	body, err := q.next.Query(ctx, target, server)
	serverQueryDuration.WithLabelValues(server).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case body == "":
		outcome = "empty"
	}
	serverQueriesTotal.WithLabelValues(server, outcome).Inc()
	return body, err
}
