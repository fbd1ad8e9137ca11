package client

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/unclealex/devicesync/internal/client/handlers"
	"github.com/unclealex/devicesync/internal/client/middleware"
	"github.com/unclealex/devicesync/internal/version"
)

const defaultRateLimit = 10

type RouteConfig struct {
	AuthToken string
	RateLimit int64
}

func SetupRoutes(c *Client, routeConfig *RouteConfig) http.Handler {
	r := gin.New()

	limit := routeConfig.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	rateLimiter := limiter.New(memory.NewStore(), limiter.Rate{
		Period: 1 * time.Second,
		Limit:  limit,
	})

	statusH := handlers.NewStatusHandler(c, c.Prefs(), c.Worker())
	syncH := handlers.NewSyncHandler(c.Worker())
	changelogH := handlers.NewChangelogHandler(c.Pager())
	tagsH := handlers.NewTagsHandler(c.Tags())

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Secure())
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", IndexHandler)

	v1 := r.Group("/v1")
	v1.Use(middleware.TokenAuth(middleware.TokenAuthConfig{Token: routeConfig.AuthToken}))
	{
		v1.GET("/status", statusH.Status)
		v1.POST("/sync", syncH.Now)
		v1.GET("/changelog", changelogH.List)
		v1.POST("/changelog/more", changelogH.More)
		v1.GET("/tags", tagsH.Get)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.DetailedWithApp())
}
