package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"atb/news-api/app/auth"
	"atb/news-api/app/comment"
	"atb/news-api/app/news"
	"atb/news-api/app/root"
	"atb/news-api/app/user"
	"atb/news-api/aws"
	"atb/news-api/db"
	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/internal/service"
	"atb/news-api/pkg/middleware"
	"atb/news-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TODO: use redis
var store = persist.NewMemoryStore(time.Minute)

const maxBodySize = 10 << 20

func NewRouter() (*gin.Engine, error) {
	if err := makeLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger, %w", err)
	}

	d := &internal.Deps{
		Tokens: security.NewTokenMaker(
			viper.GetString("jwt.secret"),
			time.Duration(viper.GetInt("jwt.expires_hours"))*time.Hour,
		),
		Passwords: security.New(),
		Mail:      service.NewSMTPMailer(),
	}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = conn

	if viper.GetString("aws.bucket") != "" {
		s3, err := aws.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Media = s3
	}

	router := gin.New()

	origins := strings.Split(viper.GetString("host.cors_origins"), ",")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{
					zap.String("requestID", c.GetString("requestID")),
					zap.String("userID", c.GetString("userID")),
				}
			},
		}),
		middleware.NewErrorHandler(),
		middleware.BodySizeLimiter(maxBodySize),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimit := viper.GetInt("security.rate_limit")

	protect := middleware.NewProtectMiddleware(d)
	restrictToAdmin := middleware.NewRestrictToMiddleware(model.RoleAdmin)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		CleanupInterval:   time.Second,
	})

	m := router.Group("/api/v1", rateLimiter)
	{
		// HEAD /api/v1/heartbeat		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	u := m.Group("/users")
	{
		// POST /api/v1/users/signup		-> Registers a new account and logs it in
		u.POST("/signup", func(c *gin.Context) { auth.Signup(c, d) })

		// POST /api/v1/users/login		-> Logs in a user and returns a JWT token
		u.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// GET /api/v1/users/logout		-> Clears the session cookie
		u.GET("/logout", auth.Logout)

		// POST /api/v1/users/forgotPassword	-> Emails a password reset link
		u.POST("/forgotPassword", func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// PATCH /api/v1/users/resetPassword/:token
		u.PATCH("/resetPassword/:token", func(c *gin.Context) { auth.ResetPassword(c, d) })

		u.Use(protect)

		// GET /api/v1/users/me			-> Returns the caller's own profile
		u.GET("/me", func(c *gin.Context) { user.Me(c, d) })

		// PATCH /api/v1/users/updateMyPassword	-> Changes the caller's password
		u.PATCH("/updateMyPassword", func(c *gin.Context) { auth.UpdatePassword(c, d) })

		// PATCH /api/v1/users/updateMe		-> Patches the caller's own profile
		u.PATCH("/updateMe", func(c *gin.Context) { user.UpdateMe(c, d) })

		// DELETE /api/v1/users/deleteMe	-> Deactivates the caller's account
		u.DELETE("/deleteMe", func(c *gin.Context) { user.DeleteMe(c, d) })

		// Account administration, admins only
		u.Use(restrictToAdmin)

		u.GET("", user.List(d))
		u.GET("/:id", user.Get(d))
		u.POST("", user.Create(d))
		u.PATCH("/:id", user.Update(d))
		u.DELETE("/:id", user.Delete(d))
	}

	n := m.Group("/news")
	{
		// Reads are public and briefly cached
		n.GET("", cacheFor(30), news.List(d))
		n.GET("/:id", cacheFor(30), news.Get(d))

		n.Use(protect)

		// POST /api/v1/news			-> Publishes a new article
		n.POST("", func(c *gin.Context) { news.NewsCreate(c, d) })

		// PATCH /api/v1/news/:id		-> Patches an article, author only
		n.PATCH("/:id", func(c *gin.Context) { news.NewsUpdate(c, d) })

		// DELETE /api/v1/news/:id		-> Removes an article and its comments
		n.DELETE("/:id", news.Delete(d))
	}

	co := m.Group("/comments", protect)
	{
		co.GET("", comment.List(d))
		co.GET("/:id", comment.Get(d))
		co.POST("", comment.Create(d))
		co.PATCH("/:id", comment.Update(d))
		co.DELETE("/:id", comment.Delete(d))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "fail",
			"message": fmt.Sprintf("Cannot find %s on this server!", c.Request.URL.Path),
		})
	})

	// Expired reset tokens pile up slowly, a daily sweep is plenty
	go service.ResetTokenCleanup(time.Hour*24, conn)

	return router, nil
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

func makeLogger() error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("\x1b[90m" + t.Format("15:04:05") + "\x1b[0m")
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level, err := zapcore.ParseLevel(viper.GetString("app.log_level"))
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)
	return nil
}
