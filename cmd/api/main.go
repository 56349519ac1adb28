package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/config"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	"github.com/sousamj2/explicolivais/internal/handler"
	"github.com/sousamj2/explicolivais/internal/middleware"
	"github.com/sousamj2/explicolivais/internal/repository/anonstore"
	"github.com/sousamj2/explicolivais/internal/repository/gormdb"
	"github.com/sousamj2/explicolivais/internal/repository/memory"
	redisRepo "github.com/sousamj2/explicolivais/internal/repository/redis"
	"github.com/sousamj2/explicolivais/internal/service"
	"github.com/sousamj2/explicolivais/internal/service/scoring"
	"github.com/sousamj2/explicolivais/pkg/auth"
	"github.com/sousamj2/explicolivais/pkg/database"
	"github.com/sousamj2/explicolivais/pkg/logger"
	"github.com/sousamj2/explicolivais/pkg/monitoring"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gin.SetMode(cfg.Server.Mode)
	isProduction := gin.Mode() == gin.ReleaseMode

	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.Migrations {
		if err := database.Migrate(db, cfg.Database.Driver, zlog); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		zlog.Info("Connected to Redis", zap.String("mode", cfg.Redis.Mode))
	} else {
		zlog.Info("Redis disabled, using in-memory caches")
	}

	sessions, err := newCache(redisClient, "quiz_session", cfg.Quiz.SessionCapacity, cfg.Quiz.SessionTTL)
	if err != nil {
		return fmt.Errorf("quiz session cache: %w", err)
	}
	pending, err := newCache(redisClient, "registration", cfg.Registration.Capacity, cfg.Registration.TokenTTL)
	if err != nil {
		return fmt.Errorf("registration cache: %w", err)
	}

	questionRepo := gormdb.NewQuestionRepo(db)
	historyRepo := gormdb.NewQuizHistoryRepo(db)
	userRepo := gormdb.NewUserRepo(db)
	blacklistRepo := gormdb.NewBlacklistRepo(db)

	anonStore, err := anonstore.New(cfg.Quiz.ResultsDir, zlog.Named("anonstore"), anonstore.WithTTL(cfg.Quiz.ResultTTL))
	if err != nil {
		return fmt.Errorf("anonymous result store: %w", err)
	}

	metrics := monitoring.New()
	scorer := scoring.NewScorer(zlog.Named("scoring"))

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		return fmt.Errorf("jwt service: %w", err)
	}

	var emailService service.EmailService
	if cfg.Email.Provider == "resend" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, zlog.Named("email"))
		if err != nil {
			return fmt.Errorf("email service: %w", err)
		}
	} else {
		emailService = service.NewNoopEmailService(zlog.Named("email"))
	}

	quizService, err := service.NewQuizService(questionRepo, historyRepo, anonStore, sessions, scorer, cfg.Quiz, metrics, zlog.Named("quiz"))
	if err != nil {
		return fmt.Errorf("quiz service: %w", err)
	}
	claimService, err := service.NewClaimService(questionRepo, historyRepo, anonStore, scorer, metrics, zlog.Named("claim"))
	if err != nil {
		return fmt.Errorf("claim service: %w", err)
	}
	registrationService, err := service.NewRegistrationService(userRepo, blacklistRepo, pending, emailService, cfg.Email.BaseURL, zlog.Named("registration"))
	if err != nil {
		return fmt.Errorf("registration service: %w", err)
	}
	authService, err := service.NewAuthService(userRepo, jwtService, zlog.Named("auth"))
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	var googleService *service.GoogleOAuthService
	if cfg.Google.ClientID != "" {
		googleService, err = service.NewGoogleOAuthService(cfg.Google)
		if err != nil {
			return fmt.Errorf("google oauth service: %w", err)
		}
	} else {
		zlog.Warn("Google client id not set, Google sign in disabled")
	}
	profileService, err := service.NewProfileService(userRepo, historyRepo, zlog.Named("profile"))
	if err != nil {
		return fmt.Errorf("profile service: %w", err)
	}

	cookie := handler.CookieConfig{
		Name:   cfg.JWT.CookieName,
		MaxAge: jwtService.Expiration(),
		Secure: isProduction,
	}
	quizHandler := handler.NewQuizHandler(quizService, zlog.Named("quiz_handler"))
	authHandler := handler.NewAuthHandler(authService, googleService, registrationService, quizService, claimService,
		cookie, cfg.Registration.TokenTTL, zlog.Named("auth_handler"))
	registrationHandler := handler.NewRegistrationHandler(registrationService, jwtService, quizService, claimService,
		cookie, cfg.Registration.TokenTTL, zlog.Named("registration_handler"))
	profileHandler := handler.NewProfileHandler(profileService, quizService, claimService, zlog.Named("profile_handler"))

	authMiddleware := middleware.NewAuthMiddleware(jwtService, cfg.JWT.CookieName)
	var limiter middleware.RequestLimiter = middleware.NewMemoryRateLimiter(zlog.Named("ratelimit"))
	if redisClient != nil {
		limiter = middleware.NewRateLimiter(redisClient, zlog.Named("ratelimit"))
	}

	go sweepAnonymousResults(ctx, quizService, cfg.Quiz.SweepInterval, zlog)

	router := gin.New()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			zlog.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			zlog.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	router.Use(middleware.RequestLogger(zlog.Named("http")), metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := database.GetSQLDB(db)
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	sessionMaxAge := int(cfg.Quiz.SessionTTL.Seconds())
	api := router.Group("/api")
	api.Use(middleware.QuizSession(sessionMaxAge, isProduction))
	{
		quiz := api.Group("/quiz")
		quiz.Use(authMiddleware.OptionalAuth())
		{
			quiz.POST("/start", quizHandler.Start)
			quiz.GET("/question/:num", quizHandler.Question)
			quiz.POST("/answer", quizHandler.Answer)
			quiz.POST("/navigate", quizHandler.Navigate)
			quiz.POST("/finish", quizHandler.Finish)
			quiz.GET("/results/:uuid", quizHandler.Results)
			quiz.POST("/restart", quizHandler.Restart)
		}

		api.POST("/register", limiter.Limit(middleware.RegistrationRateLimitConfig()), registrationHandler.Register)
		api.GET("/register/confirm/:token", registrationHandler.Confirm)
		api.GET("/register/unsubscribe/:token", registrationHandler.Unsubscribe)
		api.POST("/signup", registrationHandler.SignUp)

		authGroup := api.Group("/auth")
		{
			if googleService != nil {
				authGroup.GET("/google/login", authHandler.GoogleLogin)
				authGroup.GET("/google/callback", authHandler.GoogleCallback)
			}
			authGroup.POST("/signin", limiter.Limit(middleware.SignInRateLimitConfig()), authHandler.SignIn)
			authGroup.POST("/logout", authHandler.Logout)
		}

		profile := api.Group("/profile")
		profile.Use(authMiddleware.RequireAuth())
		{
			profile.GET("", profileHandler.Profile)
			profile.POST("/elevate-tier", profileHandler.ElevateTier)
			profile.GET("/history/export", profileHandler.ExportHistory)
			profile.POST("/claim", profileHandler.Claim)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zlog.Info("Server starting", zap.String("addr", srv.Addr), zap.String("mode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Failed to start server", zap.Error(err))
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	zlog.Info("Shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}
	zlog.Info("Server exited properly")
	return nil
}

// newCache picks Redis when a client is configured and a bounded in-process
// LRU otherwise
func newCache(client redis.UniversalClient, prefix string, capacity int, ttl time.Duration) (repository.TTLCache, error) {
	if client != nil {
		return redisRepo.NewCacheRepo(client, prefix, ttl)
	}
	return memory.NewCacheRepo(capacity, ttl)
}

// sweepAnonymousResults periodically drops expired anonymous results so the
// CSV file does not grow between quiz starts
func sweepAnonymousResults(ctx context.Context, quiz *service.QuizService, interval time.Duration, zlog *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := quiz.SweepAnonymous(); removed > 0 {
				zlog.Info("Anonymous results swept", zap.Int("removed", removed))
			}
		case <-ctx.Done():
			zlog.Info("Stopping anonymous result sweeper")
			return
		}
	}
}
