package service

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"
	"whoislookup/internal/lookup"
	"whoislookup/internal/utils"
)

func init() {
	utils.TestInitLogger()
}

// startMockWhoisServer answers every connection with the reply registered
// for the request line, or stays silent for the given duration.
func startMockWhoisServer(t *testing.T, replies map[string]string, silence time.Duration) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer func() {
					_ = conn.Close()
				}()
				line, _ := bufio.NewReader(conn).ReadString('\n')
				if silence > 0 {
					time.Sleep(silence)
					return
				}
				_, _ = conn.Write([]byte(replies[trimLine(line)]))
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func trimLine(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

type fakeEngine struct {
	result *lookup.Result
	err    error
	mu     sync.Mutex
	seen   []string
}

func (f *fakeEngine) Lookup(ctx context.Context, target string) (*lookup.Result, error) {
	f.mu.Lock()
	f.seen = append(f.seen, target)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Target = target
	return &res, nil
}

type fakeHistory struct {
	mu    sync.Mutex
	items []string
	err   error
}

func (f *fakeHistory) AddHistory(ctx context.Context, item string, res *lookup.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return f.err
}
