package handler

import (
	"bufio"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"whoislookup/internal/config"
	"whoislookup/internal/lookup"
	"whoislookup/internal/model"
	"whoislookup/internal/service"
	"whoislookup/internal/storage"
	"whoislookup/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func init() {
	utils.TestInitLogger()
}

var mockReplies = map[string]string{
	"example.com": "Domain Name: EXAMPLE.COM\r\n",
	"192.0.2.1":   "NetRange: 192.0.2.0 - 192.0.2.255\r\n",
}

func startMockWhoisServer(t *testing.T) string {
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
				_, _ = conn.Write([]byte(mockReplies[strings.TrimRight(line, "\r\n")]))
			}(conn)
		}
	}()
	return listener.Addr().String()
}

func closedAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()
	return addr
}

type testEnv struct {
	e     *echo.Echo
	h     *Handler
	store *storage.Storage
	mr    *miniredis.Miniredis
}

func setupHandler(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	server := startMockWhoisServer(t)
	dir, err := lookup.NewDirectory(map[string]string{
		"com": server,
		"net": closedAddr(t),
	}, []string{server})
	if err != nil {
		t.Fatal(err)
	}
	client := lookup.NewClient()
	client.Timeout = time.Second
	engine := lookup.NewEngine(dir, client)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	store := &storage.Storage{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	if cfg == nil {
		cfg = &config.Config{}
	}
	e := echo.New()
	e.Renderer = &utils.TemplateRegistry{
		Templates: template.Must(template.New("index.html").Parse("{{.response}}")),
	}
	h := NewHandler(service.NewWhoisService(engine, store), store, cfg)
	return &testEnv{e: e, h: h, store: store, mr: mr}
}

func TestIndex(t *testing.T) {
	env := setupHandler(t, nil)

	tests := []struct {
		name   string
		domain string
		code   int
		want   string
	}{
		{"Awaiting input", "", http.StatusOK, "Awaiting Input"},
		{"Domain lookup", "Example.COM", http.StatusOK, "RESULTS FOUND: 1"},
		{"IP lookup", "192.0.2.1", http.StatusOK, "NetRange"},
		{"Invalid target", "not a domain", http.StatusBadRequest, "not a valid IP address or domain name"},
		{"No server", "example.zz", http.StatusNotFound, "no whois server found"},
		{"Transport failure", "example.net", http.StatusBadGateway, "whois connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := url.Values{}
			f.Add("domain", tt.domain)
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(f.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()
			c := env.e.NewContext(req, rec)

			if err := env.h.Index(c); err != nil {
				t.Fatalf("Index failed: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestAPILookup(t *testing.T) {
	env := setupHandler(t, nil)

	tests := []struct {
		target string
		code   int
	}{
		{"example.com", http.StatusOK},
		{"192.0.2.1", http.StatusOK},
		{"bad_target", http.StatusBadRequest},
		{"example.zz", http.StatusNotFound},
		{"example.net", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/lookup/"+tt.target, nil)
			rec := httptest.NewRecorder()
			c := env.e.NewContext(req, rec)
			c.SetParamNames("target")
			c.SetParamValues(tt.target)

			if err := env.h.APILookup(c); err != nil {
				t.Fatalf("APILookup failed: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}

			var reply model.LookupReply
			if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if tt.code == http.StatusOK {
				if reply.Result == nil || reply.Result.Count != 1 {
					t.Errorf("unexpected result: %+v", reply)
				}
			} else if reply.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestMonitorAndHistory(t *testing.T) {
	env := setupHandler(t, nil)

	post := func(action, item string) *httptest.ResponseRecorder {
		f := url.Values{}
		f.Add("action", action)
		f.Add("item", item)
		req := httptest.NewRequest(http.MethodPost, "/api/monitor", strings.NewReader(f.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		if err := env.h.Monitor(env.e.NewContext(req, rec)); err != nil {
			t.Fatalf("Monitor failed: %v", err)
		}
		return rec
	}

	if rec := post("add", "Example.com"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"example.com"`) {
		t.Errorf("add: %d %s", rec.Code, rec.Body.String())
	}
	if rec := post("add", "bad item"); rec.Code != http.StatusBadRequest {
		t.Errorf("add invalid: expected 400, got %d", rec.Code)
	}
	if rec := post("purge", "example.com"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action: expected 400, got %d", rec.Code)
	}
	if rec := post("remove", "example.com"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"monitored":[]`) {
		t.Errorf("remove: %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/lookup/example.com", nil)
	c := env.e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("target")
	c.SetParamValues("example.com")
	_ = env.h.APILookup(c)

	req = httptest.NewRequest(http.MethodGet, "/history/example.com", nil)
	rec := httptest.NewRecorder()
	c = env.e.NewContext(req, rec)
	c.SetParamNames("item")
	c.SetParamValues("example.com")
	if err := env.h.History(c); err != nil {
		t.Fatalf("History failed: %v", err)
	}

	var body struct {
		Entries []model.HistoryEntry `json:"entries"`
		Diffs   []model.HistoryDiff  `json:"diffs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Result.Target != "example.com" {
		t.Errorf("unexpected history: %+v", body.Entries)
	}
}

func TestHealth(t *testing.T) {
	env := setupHandler(t, nil)

	check := func() string {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		if err := env.h.Health(env.e.NewContext(req, rec)); err != nil {
			t.Fatalf("Health failed: %v", err)
		}
		var status map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &status)
		return status["redis"]
	}

	if got := check(); got != "ok" {
		t.Errorf("redis = %q, want ok", got)
	}
	env.mr.Close()
	if got := check(); got != "unavailable" {
		t.Errorf("redis = %q, want unavailable", got)
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := map[string]string{
		"Example.COM":  "example.com",
		"bücher.de":    "xn--bcher-kva.de",
		"192.0.2.1":    "192.0.2.1",
		"2001:db8::1":  "2001:db8::1",
		"":             "",
		"not a domain": "not a domain",
	}
	for in, want := range tests {
		if got := normalizeTarget(in); got != want {
			t.Errorf("normalizeTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
