package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/database"
	_ "github.com/lshigami/skilltest/docs"
	adminctrl "github.com/lshigami/skilltest/internal/controller/admin"
	userctrl "github.com/lshigami/skilltest/internal/controller/user"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/logger"
	"github.com/lshigami/skilltest/internal/middleware"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/lshigami/skilltest/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the attempt reaper",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewPublisher,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewAttemptRepository,
			repository.NewSkillRepository,
			repository.NewQuestionRepository,
			repository.NewSubscriptionRepository,
		),

		fx.Provide(
			func(subs repository.SubscriptionRepository, cache *redis.Client, cfg *config.Config) service.PremiumService {
				return service.NewPremiumService(subs, cache, cfg.Redis.PremiumTTL)
			},
			func(cfg *config.Config) service.GradeCalculator {
				return service.NewGradeCalculator(cfg.SkillTest.PassPercentage)
			},
			NewExplainer,
			service.NewSkillTestService,
			service.NewScoringService,
			service.NewReviewService,
			service.NewReaperService,
			service.NewSkillService,
			service.NewQuestionService,
		),

		fx.Provide(
			userctrl.NewSkillTestController,
			adminctrl.NewAdminSkillController,
		),

		fx.Invoke(InitLogger),
		fx.Invoke(database.AutoMigrate),
		fx.Invoke(StartReaper),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to start application")
		return err
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

func InitLogger(cfg *config.Config) {
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
}

// NewRedisClient returns nil when no address is configured; the premium
// service then reads subscriptions straight from the database.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR is not set. Premium flags will not be cached.")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// NewPublisher publishes to RabbitMQ when RABBITMQ_URL is set and to the log
// otherwise.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (event.Publisher, error) {
	var publisher event.Publisher = event.LogPublisher{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := event.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		publisher = amqpPublisher
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("Publishing attempt events to RabbitMQ")
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

// NewExplainer closes the Gemini client on shutdown.
func NewExplainer(lc fx.Lifecycle, cfg *config.Config) (service.AnswerExplainer, error) {
	explainer, err := service.NewGeminiExplainerService(cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := explainer.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
	}
	return explainer, nil
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func StartReaper(lc fx.Lifecycle, reaper service.ReaperService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return reaper.Start()
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-reaper.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	skillTestCtrl *userctrl.SkillTestController,
	adminCtrl *adminctrl.AdminSkillController,
) {
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set. Every authenticated request will be rejected.")
	}

	api := router.Group("/api/v1")
	api.GET("/skills", skillTestCtrl.ListSkills)
	api.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := api.Group("", middleware.Auth(cfg.Auth.JWTSecret))
	skillTestCtrl.RegisterRoutes(authed)

	admin := authed.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	adminCtrl.RegisterRoutes(admin)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Skill test API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
