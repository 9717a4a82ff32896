package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

var errNXDomain = errors.New("no such host")

// DNSService resolves WHOIS server host names against one fixed resolver
// instead of the system configuration.
type DNSService struct {
	Resolver string
	Timeout  time.Duration
}

func NewDNSService(resolver string) *DNSService {
	if resolver == "" {
		resolver = "8.8.8.8:53"
	}
	if _, _, err := net.SplitHostPort(resolver); err != nil {
		resolver = net.JoinHostPort(resolver, "53")
	}
	return &DNSService{
		Resolver: resolver,
		Timeout:  5 * time.Second,
	}
}

// LookupHost returns the IPv4 addresses of host followed by its IPv6
// addresses. IP literals are returned unchanged.
func (s *DNSService) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	var addrs []string
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		r, err := s.query(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		addrs = append(addrs, r...)
	}

	if len(addrs) == 0 {
		if lastErr != nil && !errors.Is(lastErr, errNXDomain) {
			return nil, &net.DNSError{Err: lastErr.Error(), Name: host, Server: s.Resolver}
		}
		return nil, &net.DNSError{Err: errNXDomain.Error(), Name: host, Server: s.Resolver, IsNotFound: true}
	}
	return addrs, nil
}

func (s *DNSService) query(ctx context.Context, target string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(target), qtype)

	c := new(dns.Client)
	c.Timeout = s.Timeout
	in, _, err := c.ExchangeContext(ctx, m, s.Resolver)
	if err != nil {
		return nil, err
	}
	if in.Rcode == dns.RcodeNameError {
		return nil, errNXDomain
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s lookup of %s: %s", dns.TypeToString[qtype], target, dns.RcodeToString[in.Rcode])
	}

	var results []string
	for _, ans := range in.Answer {
		switch t := ans.(type) {
		case *dns.A:
			results = append(results, t.A.String())
		case *dns.AAAA:
			results = append(results, t.AAAA.String())
		}
	}
	return results, nil
}

