package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"whoislookup/internal/config"
	"whoislookup/internal/lookup"
	"whoislookup/internal/model"
	"whoislookup/internal/service"
	"whoislookup/internal/storage"
	"whoislookup/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/net/idna"
)

const awaitingInput = "Awaiting Input"

type Handler struct {
	Whois     *service.WhoisService
	Storage   *storage.Storage
	AppConfig *config.Config
	Upgrader  websocket.Upgrader
	wsMu      sync.Mutex
}

func NewHandler(whois *service.WhoisService, store *storage.Storage, cfg *config.Config) *Handler {
	h := &Handler{
		Whois:     whois,
		Storage:   store,
		AppConfig: cfg,
	}
	h.Upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// === Routes ===

func (h *Handler) Index(c echo.Context) error {
	domain := strings.TrimSpace(c.FormValue("domain"))
	if domain == "" {
		return c.Render(http.StatusOK, "index.html", map[string]interface{}{
			"response": awaitingInput,
		})
	}

	target := normalizeTarget(domain)
	data := map[string]interface{}{"domain": domain}
	res, err := h.Whois.Lookup(c.Request().Context(), target)
	if err != nil {
		data["response"] = err.Error()
		return c.Render(statusFor(err), "index.html", data)
	}
	data["result"] = res
	data["response"] = utils.FormatResult(res)
	return c.Render(http.StatusOK, "index.html", data)
}

func (h *Handler) APILookup(c echo.Context) error {
	raw, err := url.PathUnescape(c.Param("target"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, model.LookupReply{Error: err.Error()})
	}

	res, err := h.Whois.Lookup(c.Request().Context(), normalizeTarget(strings.TrimSpace(raw)))
	if err != nil {
		return c.JSON(statusFor(err), model.LookupReply{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, model.LookupReply{Result: res})
}

func (h *Handler) Monitor(c echo.Context) error {
	ctx := c.Request().Context()
	if c.Request().Method == http.MethodPost {
		action := c.FormValue("action")
		item := normalizeTarget(strings.TrimSpace(c.FormValue("item")))

		var err error
		switch action {
		case "add":
			if lookup.Classify(item) == lookup.KindInvalid {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid domain or ip: " + item})
			}
			err = h.Storage.AddMonitoredItem(ctx, item)
		case "remove":
			err = h.Storage.RemoveMonitoredItem(ctx, item)
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown action: " + action})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	items, err := h.Storage.GetMonitoredItems(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if items == nil {
		items = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"monitored": items})
}

func (h *Handler) History(c echo.Context) error {
	item := normalizeTarget(c.Param("item"))
	entries, diffs, err := h.Storage.GetHistoryWithDiffs(c.Request().Context(), item)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"diffs":   diffs,
	})
}

func (h *Handler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok", "redis": "ok"}
	if err := h.Storage.Ping(c.Request().Context()); err != nil {
		status["redis"] = "unavailable"
	}
	return c.JSON(http.StatusOK, status)
}

// normalizeTarget lowercases domains and converts internationalised names
// to their ASCII form. Anything idna rejects is returned as typed so the
// lookup reports it as invalid.
func normalizeTarget(target string) string {
	if target == "" || lookup.IsIP(target) {
		return target
	}
	ascii, err := idna.Lookup.ToASCII(target)
	if err != nil {
		return target
	}
	return strings.ToLower(ascii)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lookup.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, lookup.ErrNoServer):
		return http.StatusNotFound
	case lookup.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
