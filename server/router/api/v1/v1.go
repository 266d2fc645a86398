package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/personalboard/internal/profile"
	"github.com/hrygo/personalboard/internal/observability"
	boardmiddleware "github.com/hrygo/personalboard/server/middleware"
	"github.com/hrygo/personalboard/server/service/board"
)

type APIV1Service struct {
	Profile      *profile.Profile
	BoardService board.Service
	Metrics      *observability.Metrics
	Logger       *slog.Logger

	rateLimiter *boardmiddleware.RateLimiter
	schemas     *requestSchemas
	startedAt   time.Time
}

func NewAPIV1Service(profile *profile.Profile, boardService board.Service, metrics *observability.Metrics, logger *slog.Logger) (*APIV1Service, error) {
	schemas, err := newRequestSchemas()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{
		Profile:      profile,
		BoardService: boardService,
		Metrics:      metrics,
		Logger:       logger,
		rateLimiter:  boardmiddleware.NewRateLimiter(profile.RateLimitPerMinute, profile.RateLimitBurst),
		schemas:      schemas,
		startedAt:    time.Now(),
	}, nil
}

// RegisterRoutes registers the board API under /api on echoServer.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	// CORS runs at the server level so preflight requests are answered
	// before routing.
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	api := echoServer.Group("/api")
	api.Use(middleware.RequestID())
	api.Use(s.requestContextMiddleware)

	api.POST("/history", s.CreateHistory)
	api.POST("/history/member/:id", s.CreateHistoryForMember)
	api.GET("/history/member/:memberId/user/:userId", s.ListMemberHistory)

	api.GET("/members/user/:userId", s.ListMembersByUser)
	api.GET("/members/:id", s.GetMember)
	api.POST("/members", s.CreateMember)
	api.PUT("/members/:id", s.UpdateMember)
	api.DELETE("/members/:id", s.DeleteMember)

	api.GET("/system/metrics/overview", s.GetMetricsOverview)
}

// requestContextMiddleware attaches a RequestContext keyed by the echo request id.
func (s *APIV1Service) requestContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		reqCtx := observability.NewRequestContextWithID(s.Logger, requestID, c.Request().Method+" "+c.Path(), "")
		ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
