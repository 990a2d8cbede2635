// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/edumunicipal/school-backend/internal/config"
	"github.com/edumunicipal/school-backend/internal/http/handlers"
	"github.com/edumunicipal/school-backend/internal/http/middleware"
	"github.com/edumunicipal/school-backend/internal/repo"
	"github.com/edumunicipal/school-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, app *services.App, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (student/guardian PII)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB; the attachment upload route raises it)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(app)

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Students
		api.POST("/students", h.CreateStudent)
		api.GET("/students", h.ListStudents)
		api.GET("/students/:id", h.GetStudent)
		api.PATCH("/students/:id", h.UpdateStudent)
		api.DELETE("/students/:id", h.DeleteStudent)

		// Enrollments
		api.POST("/enrollments", h.CreateEnrollment)
		api.GET("/enrollments", h.ListEnrollments)
		api.PUT("/enrollments/:id/status", h.UpdateEnrollmentStatus)

		// Academic records
		api.POST("/attendance", h.CreateAttendance)
		api.GET("/attendance", h.ListAttendance)
		api.POST("/lesson-plans", h.CreateLessonPlan)
		api.GET("/lesson-plans", h.ListLessonPlans)
		api.PUT("/lesson-plans/:id/status", h.UpdateLessonPlanStatus)
		api.POST("/occurrences", h.CreateOccurrence)
		api.GET("/occurrences", h.ListOccurrences)
		api.PUT("/occurrences/:id/resolve", h.ResolveOccurrence)

		// Protocols
		api.POST("/protocols", h.OpenProtocol)
		api.GET("/protocols", h.ListProtocols)
		api.GET("/protocols/:id", h.GetProtocol)
		api.PUT("/protocols/:id/status", h.UpdateProtocolStatus)

		// Service queue ("locations" and "entries" stay distinct segments;
		// Gin's tree forbids a param and a literal at the same level)
		api.POST("/queue/locations/:location", h.JoinQueue)
		api.GET("/queue/locations/:location", h.ListQueue)
		api.POST("/queue/locations/:location/call-next", h.CallNext)
		api.PUT("/queue/entries/:id/start", h.StartEntry)
		api.PUT("/queue/entries/:id/finish", h.FinishEntry)
		api.PUT("/queue/entries/:id/cancel", h.CancelEntry)

		// Transfers
		api.POST("/transfers", h.CreateTransfer)
		api.GET("/transfers", h.ListTransfers)
		api.GET("/transfers/:id", h.GetTransfer)
		api.POST("/transfers/:id/approve", h.ApproveTransfer)
		api.POST("/transfers/:id/reject", h.RejectTransfer)
		api.POST("/transfers/:id/complete", h.CompleteTransfer)
		api.POST("/transfers/:id/notify", h.NotifyTransfer)

		// Issued documents
		api.POST("/documents", h.IssueDocument)
		api.GET("/documents", h.ListDocuments)
		api.GET("/documents/:id", h.GetDocument)
		api.DELETE("/documents/:id", h.CancelDocument)

		// Attachments (uploads allow more than the global body cap)
		up := api.Group("")
		up.Use(limitBody(10 << 20))
		up.POST("/attachments", h.UploadAttachment)
		api.GET("/attachments", h.ListAttachments)
		api.GET("/attachments/:id/content", h.DownloadAttachment)
		api.DELETE("/attachments/:id", h.DeleteAttachment)

		// Settings
		api.GET("/settings", h.ListSettings)
		api.GET("/settings/:key", h.GetSetting)
		api.PUT("/settings/:key", h.PutSetting)
		api.DELETE("/settings/:key", h.DeleteSetting)

		// Content administration
		api.POST("/news", h.CreateNews)
		api.PATCH("/news/:id", h.UpdateNews)
		api.DELETE("/news/:id", h.DeleteNews)
		api.POST("/calendar", h.CreateCalendarEvent)
		api.DELETE("/calendar/:id", h.DeleteCalendarEvent)

		// Reports
		api.GET("/reports/attendance", h.AttendanceReport)
		api.GET("/reports/occurrences", h.OccurrenceReport)
		api.GET("/reports/documents", h.DocumentReport)

		// Public portal (compressed; read-only)
		pub := api.Group("/public")
		pub.Use(gzip.Gzip(gzip.DefaultCompression))
		pub.GET("/news", h.PublicNews)
		pub.GET("/calendar", h.PublicCalendar)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
