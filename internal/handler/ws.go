package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"whoislookup/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type WSMessage struct {
	Type   string      `json:"type"`
	Target string      `json:"target,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and origins under AllowedDomain.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.AppConfig != nil && h.AppConfig.SkipOriginCheck {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	originHost := strings.ToLower(u.Hostname())

	if h.AppConfig != nil && h.AppConfig.AllowedDomain != "" {
		allowed := strings.ToLower(h.AppConfig.AllowedDomain)
		if originHost == allowed || strings.HasSuffix(originHost, "."+allowed) {
			return true
		}
	}

	host := r.Host
	if hu, err := url.Parse("//" + host); err == nil {
		host = hu.Hostname()
	}
	if originHost == strings.ToLower(host) {
		return true
	}

	utils.Log.Warn("websocket origin rejected",
		utils.Field("origin", origin), utils.Field("host", r.Host))
	return false
}

func (h *Handler) HandleWS(c echo.Context) error {
	ws, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
	}()

	ctx := c.Request().Context()
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var input struct {
			Targets []string `json:"targets"`
		}
		if err := json.Unmarshal(msg, &input); err != nil {
			h.send(ws, WSMessage{Type: "error", Data: "invalid request: " + err.Error()})
			continue
		}

		go h.streamLookups(ctx, ws, input.Targets)
	}
	return nil
}

// streamLookups runs the lookups of one request concurrently, sending each
// reply as it completes and a final all_done once every target finished.
func (h *Handler) streamLookups(ctx context.Context, ws *websocket.Conn, targets []string) {
	var wg sync.WaitGroup
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			res, err := h.Whois.Lookup(ctx, normalizeTarget(target))
			if err != nil {
				h.send(ws, WSMessage{Type: "error", Target: target, Data: err.Error()})
				return
			}
			h.send(ws, WSMessage{Type: "result", Target: target, Data: res})
		}(target)
	}
	wg.Wait()
	h.send(ws, WSMessage{Type: "all_done"})
}

func (h *Handler) send(ws *websocket.Conn, msg WSMessage) {
	b, _ := json.Marshal(msg)
	h.wsMu.Lock()
	_ = ws.WriteMessage(websocket.TextMessage, b)
	h.wsMu.Unlock()
}
