package lookup

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort    = 43
	DefaultTimeout = 5 * time.Second
)

// Querier sends one WHOIS query to one server and returns the raw reply.
type Querier interface {
	Query(ctx context.Context, target, server string) (string, error)
}

// ContextDialer is satisfied by *net.Dialer and golang.org/x/net/proxy dialers.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client speaks RFC 3912 over TCP: one CRLF-terminated line out, then
// everything the server sends until it closes the connection.
type Client struct {
	// Port is used when the server name carries no explicit port.
	Port int
	// Timeout bounds the connect phase only.
	Timeout time.Duration
	// ReadTimeout bounds the whole exchange when positive. Zero leaves the
	// read unbounded, so a silent server blocks until ctx is cancelled.
	ReadTimeout time.Duration
	Dialer      ContextDialer
	// Resolve, when set, replaces the dialer's own name resolution.
	Resolve func(ctx context.Context, host string) ([]string, error)
}

func NewClient() *Client {
	return &Client{
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

func (c *Client) Query(ctx context.Context, target, server string) (string, error) {
	conn, err := c.dial(ctx, server)
	if err != nil {
		return "", &TransportError{Server: server, Op: "connect", Err: err}
	}
	defer func() {
		_ = conn.Close()
	}()

	if c.ReadTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.ReadTimeout))
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(conn, target+"\r\n"); err != nil {
		return "", &TransportError{Server: server, Op: "write", Err: err}
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &TransportError{Server: server, Op: "read", Err: err}
	}
	return buf.String(), nil
}

func (c *Client) dial(ctx context.Context, server string) (net.Conn, error) {
	host, port := c.splitServer(server)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := c.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	if c.Resolve == nil {
		return dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
	}

	addrs, err := c.Resolve(dialCtx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error = &net.DNSError{Err: "no addresses", Name: host, IsNotFound: true}
	for _, addr := range addrs {
		conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// splitServer honours an explicit "host:port" server name and otherwise
// applies the client's default port. Bare IPv6 literals are kept whole.
func (c *Client) splitServer(server string) (string, string) {
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	if host, p, err := net.SplitHostPort(server); err == nil {
		if _, convErr := strconv.Atoi(p); convErr == nil {
			return host, p
		}
	}
	return server, strconv.Itoa(port)
}
