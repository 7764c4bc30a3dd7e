package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	checkoutdomain "github.com/smallbiznis/trueup/internal/checkout/domain"
	"github.com/smallbiznis/trueup/internal/config"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	"github.com/smallbiznis/trueup/internal/webhook"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
	engine           *gin.Engine
	cfg              config.Config
	webhookSvc       *webhook.Service
	checkoutSvc      checkoutdomain.Service
	subscriptionSvc  subscriptiondomain.Service
	payoutAccountSvc payoutdomain.Service
	workOrderSvc     workorderdomain.Service
	invoiceSvc       invoicedomain.Service
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	WebhookSvc       *webhook.Service
	CheckoutSvc      checkoutdomain.Service
	SubscriptionSvc  subscriptiondomain.Service
	PayoutAccountSvc payoutdomain.Service
	WorkOrderSvc     workorderdomain.Service
	InvoiceSvc       invoicedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		webhookSvc:       p.WebhookSvc,
		checkoutSvc:      p.CheckoutSvc,
		subscriptionSvc:  p.SubscriptionSvc,
		payoutAccountSvc: p.PayoutAccountSvc,
		workOrderSvc:     p.WorkOrderSvc,
		invoiceSvc:       p.InvoiceSvc,
	}

	svc.registerWebhookRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/processor", s.HandleProcessorWebhook)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	api.POST("/checkout", s.ProcessCheckout)

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.ListSubscriptions)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.GET("/subscriptions/authoritative", s.GetAuthoritativeSubscription)

	// -------- Payout accounts --------
	api.POST("/payout_accounts", s.CreatePayoutAccount)
	api.GET("/payout_accounts", s.GetPayoutAccountByOwner)
	api.POST("/payout_accounts/:id/refresh", s.RefreshPayoutAccount)

	// -------- Work orders --------
	api.POST("/work_orders", s.CreateWorkOrder)
	api.GET("/work_orders", s.ListWorkOrders)
	api.GET("/work_orders/:id", s.GetWorkOrderByID)
	api.POST("/work_orders/:id/transition", s.TransitionWorkOrder)
	api.DELETE("/work_orders/:id", s.DeleteWorkOrder)

	// -------- Invoices --------
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id/amount", s.UpdateInvoiceAmount)
	api.POST("/invoices/:id/transition", s.TransitionInvoice)
}
