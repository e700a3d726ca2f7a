package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/handlers"
	"github.com/openshelf/openshelf/backend/internal/middleware"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/openshelf/openshelf/backend/internal/services"
	"github.com/openshelf/openshelf/backend/pkg/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	ctx context.Context,
	e *echo.Echo,
	cfg *config.Config,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	bus *events.Bus,
	firebaseAuthClient *auth.Client,
) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Book{},
		&models.ProgressUpdate{},
		&models.Review{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	logrus.Info("postgres auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	bookRepo := repositories.NewPostgresBookRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database(cfg.MongoDatabase))
	progressRepo := repositories.NewPostgresProgressRepository(pgdb)
	reviewRepo := repositories.NewPostgresReviewRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Services ---
	log := logrus.WithField("service", "openshelf-api")
	identity := services.NewIdentityResolver(userRepo, log)
	engagement := services.NewEngagementService(likeRepo, commentRepo, bus, log)
	postService := services.NewPostService(postRepo, engagement, bus, log)
	feedService := services.NewFeedService(
		followRepo, postRepo, progressRepo, reviewRepo, bookRepo,
		identity, engagement,
		services.FeedConfig{
			LimitPerSource: cfg.FeedLimitPerSource,
			MaxItems:       cfg.FeedMaxItems,
			SourceTimeout:  cfg.FeedSourceTimeout,
		},
		log,
	)

	notifier := services.NewNotifier(bus, notificationRepo, postRepo, progressRepo, reviewRepo, log)
	if err := notifier.Start(ctx); err != nil {
		return err
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if cfg.AuthMode == "firebase" && firebaseAuthClient != nil {
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
	} else {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	}

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)

	bookHandler := handlers.NewBookHandler(bookRepo)
	bookHandler.RegisterBookRoutes(api)

	postHandler := handlers.NewPostHandler(postService)
	postHandler.RegisterPostRoutes(api)

	activityHandler := handlers.NewActivityHandler(progressRepo, reviewRepo)
	activityHandler.RegisterActivityRoutes(api)

	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api)

	likeHandler := handlers.NewLikeHandler(engagement)
	likeHandler.RegisterLikeRoutes(api)

	commentHandler := handlers.NewCommentHandler(engagement)
	commentHandler.RegisterCommentRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	logrus.Info("all routes configured")
	return nil
}
