package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Handler mounts its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler also exposes routes that need no token.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	Mode        string
	RateLimit   rate.Limit
	RateBurst   int
	RateEnabled bool
	MaxBodySize int64
	UploadsDir  string
	CORSConfig  middleware.CORSConfig
	Gatherer    prometheus.Gatherer
	Metrics     *metrics.Metrics
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	health   Handler
	public   []Handler
	handlers []Handler
	config   RouterConfig
}

// NewRouter wires the global middleware chain. public handlers are mounted
// without authentication; handlers that implement PublicHandler contribute
// to both groups.
func NewRouter(auth *middleware.AuthMiddleware, health Handler, public []Handler, handlers []Handler, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	middleware.RegisterValidation()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(config.CORSConfig),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	if config.MaxBodySize > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodySize))
	}
	if config.RateEnabled {
		engine.Use(middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}).RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		health:   health,
		public:   public,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	r.health.RegisterRoutes(root)
	gatherer := r.config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	root.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if r.config.UploadsDir != "" {
		root.StaticFS("/files", http.Dir(r.config.UploadsDir))
	}

	for _, h := range r.public {
		h.RegisterRoutes(root)
	}
	for _, h := range r.handlers {
		if p, ok := h.(PublicHandler); ok {
			p.RegisterPublicRoutes(root)
		}
	}

	protected := r.engine.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.handlers {
		h.RegisterRoutes(protected)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "route not found", "code": "NOT_FOUND"})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
