package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/heartscan/config"
	"github.com/lshigami/heartscan/database"
	_ "github.com/lshigami/heartscan/docs" // Swagger docs
	adminctrl "github.com/lshigami/heartscan/internal/controller/admin"
	userctrl "github.com/lshigami/heartscan/internal/controller/user"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/lshigami/heartscan/internal/scoring"
	"github.com/lshigami/heartscan/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp()
			if err := app.Start(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("Failed to start application")
				return err
			}
			<-app.Done()
			log.Info().Msg("Application shutting down gracefully...")

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
}

func newApp() *fx.App {
	return fx.New(
		// Core
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewQuestionBanks,
			NewScoringPolicy,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewAssessmentRepository,
			repository.NewResponseRepository,
			repository.NewResultRepository,
			repository.NewProgressRepository,
			repository.NewInsightRepository,
		),

		// Services
		fx.Provide(
			service.NewCatalogService,
			service.NewAssessmentService,
			service.NewResponseService,
			service.NewGeminiLLMService,
			service.NewInsightService,
			func(
				db *gorm.DB,
				banks *questionbank.Registry,
				policy scoring.Policy,
				assessmentRepo repository.AssessmentRepository,
				responseRepo repository.ResponseRepository,
				resultRepo repository.ResultRepository,
				progressRepo repository.ProgressRepository,
				insights service.InsightService,
				cfg *config.Config,
			) service.ResultService {
				return service.NewResultService(db, banks, policy, assessmentRepo, responseRepo, resultRepo, progressRepo,
					[]service.ResultConsumer{insights}, cfg.Insight.Timeout)
			},
		),

		// Controllers
		fx.Provide(
			userctrl.NewAssessmentController,
			userctrl.NewCatalogController,
			adminctrl.NewBankController,
		),

		fx.Invoke(database.Migrate),
		fx.Invoke(RegisterRoutesAndStartServer),
	)
}

// NewQuestionBanks loads the embedded banks, or the directory configured in
// QUESTION_BANK_DIR.
func NewQuestionBanks(cfg *config.Config) (*questionbank.Registry, error) {
	reg, err := questionbank.NewRegistry(questionbank.Options{
		Dir:        cfg.QuestionBank.Dir,
		RetakeDays: cfg.QuestionBank.RetakeDays,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Strs("types", reg.Types()).Msg("Question banks loaded")
	return reg, nil
}

// NewScoringPolicy builds the scoring thresholds from SCORING_* settings and
// refuses to start with an inconsistent set.
func NewScoringPolicy(cfg *config.Config) (scoring.Policy, error) {
	s := cfg.Scoring
	policy := scoring.Policy{
		SecondaryGap:              s.SecondaryGap,
		StraightLineVariance:      s.StraightLineVariance,
		StraightLineMinStatements: s.StraightLineMinStatements,
		MidlineTolerance:          s.MidlineTolerance,
		FastResponseMs:            s.FastResponseMs,
		SlowResponseMs:            s.SlowResponseMs,
		HealthyVarianceLow:        s.HealthyVarianceLow,
		HealthyVarianceHigh:       s.HealthyVarianceHigh,
		MaxVariance:               s.MaxVariance,
		InconsistentTimingCV:      s.InconsistentTimingCV,
		TimingMinResponses:        s.TimingMinResponses,
	}
	if err := policy.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid SCORING_* configuration")
		return scoring.Policy{}, fmt.Errorf("scoring policy: %w", err)
	}
	return policy, nil
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
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

// RegisterRoutesAndStartServer mounts the API and ties the HTTP server to
// the fx lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	assessmentCtrl *userctrl.AssessmentController,
	catalogCtrl *userctrl.CatalogController,
	bankCtrl *adminctrl.BankController,
) {
	api := router.Group("/api/v1")
	assessmentCtrl.RegisterRoutes(api)
	catalogCtrl.RegisterRoutes(api)
	bankCtrl.RegisterRoutes(api.Group("/admin"))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			return server.Shutdown(ctx)
		},
	})
}
