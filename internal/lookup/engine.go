package lookup

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const referralMarker = "whois server:"

var referralPattern = regexp.MustCompile(`(?i)whois server:(.*)`)

// Engine resolves targets to WHOIS servers and aggregates their replies.
// It holds no per-lookup state and is safe for concurrent use.
type Engine struct {
	dir     *Directory
	querier Querier
	log     *zap.Logger
	partial bool
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPartialResults keeps a lookup going when a referral or IP server
// fails, recording the failure on the result instead. A failed domain
// primary still aborts the lookup.
func WithPartialResults() Option {
	return func(e *Engine) {
		e.partial = true
	}
}

func NewEngine(dir *Directory, q Querier, opts ...Option) *Engine {
	e := &Engine{
		dir:     dir,
		querier: q,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Lookup(ctx context.Context, target string) (*Result, error) {
	switch Classify(target) {
	case KindIP:
		return e.lookupIP(ctx, target)
	case KindDomain:
		return e.lookupDomain(ctx, target)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
}

// SelectServer returns the matching suffix and its server for domain.
func (e *Engine) SelectServer(domain string) (string, string, error) {
	domain = strings.ToLower(domain)
	for _, suffix := range suffixes(domain) {
		if server, ok := e.dir.Server(suffix); ok {
			return suffix, server, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrNoServer, domain)
}

// suffixes lists domain and every suffix obtained by dropping leading
// labels, longest first.
func suffixes(domain string) []string {
	labels := strings.Split(domain, ".")
	out := make([]string, 0, len(labels))
	for i := range labels {
		out = append(out, strings.Join(labels[i:], "."))
	}
	return out
}

func (e *Engine) lookupDomain(ctx context.Context, target string) (*Result, error) {
	target = strings.ToLower(target)

	suffix, server, err := e.SelectServer(target)
	if err != nil {
		return nil, err
	}
	e.log.Debug("selected whois server",
		zap.String("target", target), zap.String("suffix", suffix), zap.String("server", server))

	res := &Result{Target: target, Type: TypeDomain}
	responses := newResponseSet()

	body, err := e.querier.Query(ctx, target, server)
	if err != nil {
		return nil, err
	}

	if body != "" {
		responses.put(server, body)

		if referral := extractReferral(body); referral != "" &&
			referral != strings.ToLower(strings.TrimSpace(server)) {
			e.log.Debug("following referral",
				zap.String("target", target), zap.String("from", server), zap.String("to", referral))

			second, err := e.querier.Query(ctx, target, referral)
			switch {
			case err != nil && !e.partial:
				return nil, err
			case err != nil:
				e.log.Warn("referral query failed", zap.String("server", referral), zap.Error(err))
				res.Failures = append(res.Failures, Failure{Server: referral, Error: err.Error()})
			case second != "":
				responses.put(referral, second)
			}
		}
	}

	res.Count = responses.len()
	res.Responses = responses.reversed()
	return res, nil
}

// extractReferral returns the lowercased host named on the first
// "whois server:" line, or "" when there is none.
func extractReferral(body string) string {
	lower := strings.ToLower(body)
	if !strings.Contains(lower, referralMarker) {
		return ""
	}
	m := referralPattern.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (e *Engine) lookupIP(ctx context.Context, target string) (*Result, error) {
	res := &Result{Target: target, Type: TypeIP}
	responses := newResponseSet()
	failed := make(map[string]bool)

	for _, server := range e.dir.IPServers() {
		if responses.has(server) || failed[server] {
			continue
		}

		body, err := e.querier.Query(ctx, target, server)
		if err != nil {
			if !e.partial {
				return nil, err
			}
			e.log.Warn("ip whois query failed", zap.String("server", server), zap.Error(err))
			failed[server] = true
			res.Failures = append(res.Failures, Failure{Server: server, Error: err.Error()})
			continue
		}
		responses.put(server, body)
	}

	res.Count = responses.len()
	res.Responses = responses.reversed()
	return res, nil
}
