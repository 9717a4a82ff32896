package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"whoislookup/internal/config"
	"whoislookup/internal/handler"
	"whoislookup/internal/service"
	"whoislookup/internal/storage"
	"whoislookup/internal/utils"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger("")
		utils.Log.Fatal("invalid configuration", utils.Field("error", err.Error()))
	}
	utils.InitLogger(cfg.LogFile)
	defer func() {
		_ = utils.Log.Sync()
	}()

	dir, err := config.LoadDirectory(cfg.ServersFile)
	if err != nil {
		utils.Log.Fatal("failed to load whois servers", utils.Field("file", cfg.ServersFile), utils.Field("error", err.Error()))
	}
	tlds, ips := dir.Len()
	utils.Log.Info("whois servers loaded", utils.Field("tld", tlds), utils.Field("ip", ips))

	engine, err := service.BuildEngine(cfg, dir)
	if err != nil {
		utils.Log.Fatal("failed to build lookup engine", utils.Field("error", err.Error()))
	}

	// Dependencies
	store := storage.NewStorage(cfg.RedisHost, cfg.RedisPort)
	var history service.HistoryStore
	if cfg.EnableHistory {
		history = store
	}
	whois := service.NewWhoisService(engine, history)
	h := handler.NewHandler(whois, store, cfg)

	sched := service.NewScheduler(store, service.NewMonitorService(whois), cfg.MonitorSchedule)
	if err := sched.Start(); err != nil {
		utils.Log.Error("scheduler not started", utils.Field("error", err.Error()))
	}

	e := NewServer(h)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			utils.Log.Fatal("shutting down the server", utils.Field("error", err.Error()))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	<-sched.Stop().Done()
	if err := e.Shutdown(ctx); err != nil {
		utils.Log.Error("shutdown failed", utils.Field("error", err.Error()))
	}
}

// NewServer wires middleware, templates and routes around h. Templates are
// read from ./templates.
func NewServer(h *handler.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentSecurityPolicy: "default-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:;",
	}))

	e.Renderer = &utils.TemplateRegistry{
		Templates: template.Must(template.New("").Funcs(utils.FuncMap()).ParseGlob("templates/*.html")),
	}

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		errorData := map[string]interface{}{
			"Code":    code,
			"Message": http.StatusText(code),
		}
		if renderErr := c.Render(code, "error.html", errorData); renderErr != nil {
			utils.Log.Error("failed to render error page", utils.Field("error", renderErr.Error()))
		}
	}

	// Routes
	e.GET("/", h.Index)
	e.POST("/", h.Index)
	e.GET("/ws", h.HandleWS)
	e.GET("/api/lookup/:target", h.APILookup)
	e.GET("/api/monitor", h.Monitor)
	e.POST("/api/monitor", h.Monitor)
	e.GET("/history/:item", h.History)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
