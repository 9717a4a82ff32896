package service

import (
	"context"
	"net"
	"strconv"
	"time"
	"whoislookup/internal/lookup"

	"github.com/likexian/whois"
	"golang.org/x/net/proxy"
)

// LibraryQuerier sends queries through github.com/likexian/whois. The
// library's own referral following and query statistics are switched off
// so the engine stays in charge of referrals.
type LibraryQuerier struct {
	client *whois.Client
	port   int
}

func NewLibraryQuerier(dialer proxy.Dialer, timeout time.Duration, port int) *LibraryQuerier {
	c := whois.NewClient().
		SetDisableStats(true).
		SetDisableReferral(true)
	if dialer != nil {
		c.SetDialer(dialer)
	}
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	if port <= 0 {
		port = lookup.DefaultPort
	}
	return &LibraryQuerier{client: c, port: port}
}

func (q *LibraryQuerier) Query(ctx context.Context, target, server string) (string, error) {
	addr := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		addr = net.JoinHostPort(server, strconv.Itoa(q.port))
	}

	type reply struct {
		body string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		body, err := q.client.Whois(target, addr)
		ch <- reply{body, err}
	}()

	select {
	case <-ctx.Done():
		return "", &lookup.TransportError{Server: server, Op: "query", Err: ctx.Err()}
	case r := <-ch:
		if r.err != nil {
			return "", &lookup.TransportError{Server: server, Op: "query", Err: r.err}
		}
		return r.body, nil
	}
}
