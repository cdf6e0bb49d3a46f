package http

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/jmehdipour/enroll-gateway/internal/http/middleware"
	"github.com/jmehdipour/enroll-gateway/internal/metrics"
	"github.com/jmehdipour/enroll-gateway/internal/repository"
	"github.com/jmehdipour/enroll-gateway/internal/service/intake"
	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Deps struct {
	Intake *intake.Service
	Repo   repository.EnrollmentsRepository
	Redis  *redis.Client // optional, enables the webhook rate limiter
	Log    *zap.Logger
	Now    func() time.Time
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(cfg config.Config, d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLevel(cfg.Log.Level))
	e.Renderer = newRenderer()
	e.Use(echoMid.Recover(), echoMid.Logger())
	if cfg.HTTP.MaxBodyBytes != "" {
		e.Use(echoMid.BodyLimit(cfg.HTTP.MaxBodyBytes))
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	adminMW := middleware.AdminKeyMiddleware(cfg.Admin.APIKey)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          d.Redis,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:webhook:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	e.POST("/api/webhook", webhookHandler(d.Intake, cfg.Webhook.Secret, d.Log), rlMW)

	api := e.Group("/api/enrolled", adminMW)
	api.GET("", listEnrolledHandler(d.Repo, d.Log))
	api.GET("/search", searchEnrolledHandler(d.Repo, d.Log, d.Now))

	e.GET("/enrolled", enrolledPageHandler(d.Repo, d.Log, d.Now), adminMW)

	return &Server{e: e, log: d.Log}
}

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

func echoLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

type renderer struct{ t *template.Template }

func newRenderer() *renderer {
	t := template.Must(template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
	}).ParseFS(templatesFS, "templates/*.html"))
	return &renderer{t: t}
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}
