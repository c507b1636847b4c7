package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RouteOptions are the transport settings SetupRoutes needs.
type RouteOptions struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
	// UploadDir is served under /uploads when set.
	UploadDir string
	// Done stops background work started here.
	Done <-chan struct{}
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
	}
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	cfg.AllowCredentials = true
	return cfg
}

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, opts RouteOptions) {

	// --- Middleware ---

	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(cors.New(corsConfig(opts.CORSOrigin)))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics", "/uploads"})))
	if env.Metrics != nil {
		router.Use(env.Metrics.Middleware())
	}

	// --- Rate Limiter Setup ---

	limiter := NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	if opts.Done != nil {
		go limiter.RunJanitor(10*time.Minute, opts.Done)
	}
	limited := RateLimitMiddleware(limiter, env.Metrics)

	optionalAuth := AuthMiddleware(env.Svc, false)
	requireAuth := AuthMiddleware(env.Svc, true)

	// --- API Routes ---

	api := router.Group("/api")
	{
		api.GET("/health", env.Health)

		exec := env.Exec(env.actions())
		api.GET("/exec", optionalAuth, exec)
		api.POST("/exec", limited, optionalAuth, exec)

		api.POST("/auth/register", limited, env.Register)
		api.POST("/auth/login", limited, env.Login)
		api.GET("/auth/me", requireAuth, env.Me)

		api.GET("/posts", optionalAuth, env.GetPosts)
		api.GET("/posts/:id", optionalAuth, env.GetPost)
		api.POST("/posts", limited, requireAuth, env.CreatePost)
		api.PUT("/posts/:id", requireAuth, env.UpdatePost)
		api.DELETE("/posts/:id", requireAuth, env.DeletePost)

		api.POST("/posts/:id/like", limited, requireAuth, env.React)
		api.DELETE("/posts/:id/like", requireAuth, env.RemoveReaction)

		api.GET("/posts/:id/comments", env.GetComments)
		api.POST("/posts/:id/comments", limited, requireAuth, env.CreateComment)
		api.DELETE("/comments/:id", requireAuth, env.DeleteComment)

		api.GET("/users/:id", env.GetProfile)
		api.GET("/users/:id/posts", optionalAuth, env.GetUserPosts)
		api.PUT("/profile", requireAuth, env.UpdateProfile)
		api.PUT("/profile/password", requireAuth, env.ChangePassword)

		api.GET("/notifications", requireAuth, env.GetNotifications)
		api.POST("/notifications/read-all", requireAuth, env.MarkAllNotificationsRead)
		api.POST("/notifications/:id/read", requireAuth, env.MarkNotificationRead)

		api.POST("/uploads", limited, requireAuth, env.UploadImage)

		admin := api.Group("/admin", requireAuth, AdminMiddleware())
		{
			admin.GET("/stats", env.AdminStats)
			admin.GET("/users", env.AdminUsers)
			admin.PUT("/users/:id/role", env.AdminSetRole)
			admin.DELETE("/users/:id", env.AdminDeleteUser)
		}
	}

	// --- WebSocket Route ---

	router.GET("/ws", env.ServeWs)

	// --- Operational ---

	if env.Metrics != nil {
		router.GET("/metrics", gin.WrapH(env.Metrics.Handler()))
	}
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}
}
