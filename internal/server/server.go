package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/subshare/internal/config"
	"github.com/smallbiznis/subshare/internal/credentials"
	expensedomain "github.com/smallbiznis/subshare/internal/expense/domain"
	"github.com/smallbiznis/subshare/internal/observability"
	obsmiddleware "github.com/smallbiznis/subshare/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/subshare/internal/observability/metrics"
	obstracing "github.com/smallbiznis/subshare/internal/observability/tracing"
	reminderdomain "github.com/smallbiznis/subshare/internal/reminder/domain"
	statsdomain "github.com/smallbiznis/subshare/internal/stats/domain"
	subscriptiondomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	verificationdomain "github.com/smallbiznis/subshare/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	subscriptionSvc subscriptiondomain.Service
	verificationSvc verificationdomain.Service
	expenseSvc      expensedomain.Service
	statsSvc        statsdomain.Service
	reminderSvc     reminderdomain.Service
	guard           *credentials.Guard
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	SubscriptionSvc subscriptiondomain.Service
	VerificationSvc verificationdomain.Service
	ExpenseSvc      expensedomain.Service
	StatsSvc        statsdomain.Service
	ReminderSvc     reminderdomain.Service
	Guard           *credentials.Guard
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		subscriptionSvc: p.SubscriptionSvc,
		verificationSvc: p.VerificationSvc,
		expenseSvc:      p.ExpenseSvc,
		statsSvc:        p.StatsSvc,
		reminderSvc:     p.ReminderSvc,
		guard:           p.Guard,
		obsMetrics:      p.ObsMetrics,
	}

	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Services --------
	v1.GET("/services", s.ListServices)
	v1.POST("/services", AdminRequired(), s.CreateService)
	v1.POST("/services/scan", AdminRequired(), s.ImportServiceFromScan)
	v1.GET("/services/:id", s.GetService)
	v1.DELETE("/services/:id", AdminRequired(), s.DeleteService)
	v1.PATCH("/services/:id/instructions", AdminRequired(), s.UpdateInstructions)

	// -------- Members --------
	v1.POST("/services/:id/members/:memberId/claim", s.ClaimSlot)
	v1.POST("/services/:id/members/:memberId/confirm", AdminRequired(), s.ConfirmPayment)
	v1.POST("/services/:id/members/:memberId/downgrade", AdminRequired(), s.DowngradeMember)

	// -------- Verification --------
	v1.POST("/services/:id/members/:memberId/verification", s.SubmitVerification)
	v1.GET("/services/:id/members/:memberId/verification", s.GetVerification)
	v1.POST("/services/:id/members/:memberId/verification/accept", s.AcceptVerification)
	v1.POST("/services/:id/members/:memberId/verification/cancel", s.CancelVerification)

	// -------- Expenses --------
	v1.POST("/services/:id/members/:memberId/expenses", s.AddExpense)
	v1.DELETE("/services/:id/members/:memberId/expenses/:expenseId", s.DeleteExpense)

	// -------- Credentials --------
	v1.POST("/services/:id/credentials/reveal", s.RevealCredentials)
	v1.GET("/services/:id/credentials", s.GetCredentials)
	v1.POST("/services/:id/credentials/copy", s.CopyCredentials)

	// -------- Stats / Reminder --------
	v1.GET("/stats", s.GetStats)
	v1.POST("/services/:id/reminder", AdminRequired(), s.GenerateReminder)
}
