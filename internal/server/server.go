package server

import (
	"log"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/middleware"
	"github.com/fitlogapp/fitlog-backend/pkg/storage"

	achievementHttp "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/delivery/http"
	achievementRepo "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/repository"
	achievementService "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"

	botHttp "github.com/fitlogapp/fitlog-backend/internal/modules/bot/delivery/http"
	botRepo "github.com/fitlogapp/fitlog-backend/internal/modules/bot/repository"
	botService "github.com/fitlogapp/fitlog-backend/internal/modules/bot/service"

	leaderboardHttp "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/repository"
	leaderboardService "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"

	metricsHttp "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/delivery/http"
	metricsService "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"

	notiHttp "github.com/fitlogapp/fitlog-backend/internal/modules/notification/delivery/http"
	notifRepo "github.com/fitlogapp/fitlog-backend/internal/modules/notification/repository"
	notifService "github.com/fitlogapp/fitlog-backend/internal/modules/notification/service"

	profileHttp "github.com/fitlogapp/fitlog-backend/internal/modules/profile/delivery/http"
	profileService "github.com/fitlogapp/fitlog-backend/internal/modules/profile/service"

	searchHttp "github.com/fitlogapp/fitlog-backend/internal/modules/search/delivery/http"
	searchService "github.com/fitlogapp/fitlog-backend/internal/modules/search/service"

	statHttp "github.com/fitlogapp/fitlog-backend/internal/modules/stat/delivery/http"
	statService "github.com/fitlogapp/fitlog-backend/internal/modules/stat/service"

	userHttp "github.com/fitlogapp/fitlog-backend/internal/modules/user/delivery/http"
	userRepo "github.com/fitlogapp/fitlog-backend/internal/modules/user/repository"
	userService "github.com/fitlogapp/fitlog-backend/internal/modules/user/service"

	workoutHttp "github.com/fitlogapp/fitlog-backend/internal/modules/workout/delivery/http"
	workoutRepo "github.com/fitlogapp/fitlog-backend/internal/modules/workout/repository"
	workoutService "github.com/fitlogapp/fitlog-backend/internal/modules/workout/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	authSvc := userService.NewAuthService(users, searchSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(users, imageStorage, searchSvc)
	userHandler := userHttp.NewUserHandler(userSvc)

	// Ledger and derived-metric aggregator
	workouts := workoutRepo.NewWorkoutRepository(db)
	metricsSvc := metricsService.NewMetricsService(workouts)
	metricsHandler := metricsHttp.NewMetricsHandler(metricsSvc)

	// Achievement engine
	unlocks := achievementRepo.NewUnlockRepository(db)
	achievementSvc := achievementService.NewAchievementService(unlocks)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	// Leaderboard ranker
	boards := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(boards, users, redisClient, cfg.LeaderboardWindowDays, cfg.LeaderboardCacheTTL)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	// Notification dispatcher
	notifications := notifRepo.NewNotificationRepository(db)
	emailChannel := notifService.NewEmailChannel(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
	notificationSvc := notifService.NewNotificationService(notifications, users, emailChannel, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	// Workout submission pipeline ties the engine together
	workoutSvc := workoutService.NewWorkoutService(workouts, metricsSvc, achievementSvc, leaderboardSvc, notificationSvc)
	workoutHandler := workoutHttp.NewWorkoutHandler(workoutSvc)

	profileSvc := profileService.NewProfileService(users, metricsSvc, unlocks, imageStorage, searchSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	statSvc := statService.NewStatService(users, workouts)
	statHandler := statHttp.NewStatHandler(statSvc)

	// Chat-bot mirror
	sessions := botRepo.NewSessionRepository(db)
	sender := botService.NewHTTPSender(cfg.BotAPIBase, cfg.BotToken)
	botSvc := botService.NewBotService(sessions, users, workoutSvc, metricsSvc, leaderboardSvc, achievementSvc, sender)
	botHandler := botHttp.NewBotHandler(botSvc, cfg.BotWebhookSecret)

	router := gin.New()

	setupCORS(router, cfg)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/bot/webhook"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Webhook authenticates with its own shared secret
	api.POST("/bot/webhook", botHandler.HandleWebhook)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", userHandler.GetAllUsers)
			adminGroup.PUT("/users/:id", userHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", userHandler.DeleteUser)
			adminGroup.POST("/leaderboard/snapshots", leaderboardHandler.CaptureSnapshot)
		}

		// Workout routes
		protected.POST("/workouts", workoutHandler.LogWorkout)
		protected.GET("/workouts", workoutHandler.ListWorkouts)
		protected.GET("/metrics/me", metricsHandler.GetMyMetrics)

		// Achievement routes
		protected.GET("/achievements", achievementHandler.GetAchievements)

		// Leaderboard routes
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/leaderboard/snapshots", leaderboardHandler.GetSnapshots)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// Search and stats
		protected.GET("/users/search", searchHandler.SearchUsers)
		protected.GET("/stats/overview", statHandler.GetOverview)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Bot-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
