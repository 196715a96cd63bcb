package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/config"
	"github.com/freshvale/dairyops/internal/customer"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	"github.com/freshvale/dairyops/internal/invoice"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	"github.com/freshvale/dairyops/internal/modification"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	obslogger "github.com/freshvale/dairyops/internal/observability/logger"
	obsmetrics "github.com/freshvale/dairyops/internal/observability/metrics"
	obstracing "github.com/freshvale/dairyops/internal/observability/tracing"
	"github.com/freshvale/dairyops/internal/order"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	"github.com/freshvale/dairyops/internal/outstanding"
	outstandingdomain "github.com/freshvale/dairyops/internal/outstanding/domain"
	"github.com/freshvale/dairyops/internal/payment"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/freshvale/dairyops/internal/product"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	"github.com/freshvale/dairyops/internal/providers/pdf"
	"github.com/freshvale/dairyops/internal/report"
	"github.com/freshvale/dairyops/internal/route"
	routedomain "github.com/freshvale/dairyops/internal/route/domain"
	"github.com/freshvale/dairyops/internal/sale"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	"github.com/freshvale/dairyops/internal/subscription"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	route.Module,
	product.Module,
	customer.Module,
	subscription.Module,
	modification.Module,
	order.Module,
	sale.Module,
	invoice.Module,
	payment.Module,
	outstanding.Module,
	report.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	db              *gorm.DB
	genID           *snowflake.Node
	routeSvc        routedomain.Service
	productSvc      productdomain.Service
	customerSvc     customerdomain.Service
	subscriptionSvc subscriptiondomain.Service
	modificationSvc modificationdomain.Service
	orderSvc        orderdomain.Service
	saleSvc         saledomain.Service
	invoiceSvc      invoicedomain.Service
	paymentSvc      paymentdomain.Service
	outstandingSvc  outstandingdomain.Service
	htmlRenderer    *report.HTMLRenderer
	pdfProvider     pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	RouteSvc        routedomain.Service
	ProductSvc      productdomain.Service
	CustomerSvc     customerdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ModificationSvc modificationdomain.Service
	OrderSvc        orderdomain.Service
	SaleSvc         saledomain.Service
	InvoiceSvc      invoicedomain.Service
	PaymentSvc      paymentdomain.Service
	OutstandingSvc  outstandingdomain.Service
	HTMLRenderer    *report.HTMLRenderer
	PDFProvider     pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		routeSvc:        p.RouteSvc,
		productSvc:      p.ProductSvc,
		customerSvc:     p.CustomerSvc,
		subscriptionSvc: p.SubscriptionSvc,
		modificationSvc: p.ModificationSvc,
		orderSvc:        p.OrderSvc,
		saleSvc:         p.SaleSvc,
		invoiceSvc:      p.InvoiceSvc,
		paymentSvc:      p.PaymentSvc,
		outstandingSvc:  p.OutstandingSvc,
		htmlRenderer:    p.HTMLRenderer,
		pdfProvider:     p.PDFProvider,
	}

	svc.registerAPIRoutes()
	svc.registerPrintRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Routes --------
	api.GET("/routes", s.ListRoutes)
	api.POST("/routes", s.CreateRoute)
	api.GET("/routes/:id", s.GetRouteByID)
	api.PATCH("/routes/:id", s.UpdateRoute)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.GET("/customers/:id/outstanding", s.GetCustomerOutstanding)

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.ListSubscriptions)
	api.POST("/subscriptions", s.CreateSubscription)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.PATCH("/subscriptions/:id", s.UpdateSubscription)
	api.GET("/subscriptions/:id/quantity", s.ResolveSubscriptionQuantity)

	// -------- Modifications --------
	api.GET("/modifications", s.ListModifications)
	api.POST("/modifications", s.CreateModification)
	api.GET("/modifications/:id", s.GetModificationByID)
	api.PATCH("/modifications/:id", s.UpdateModification)
	api.DELETE("/modifications/:id", s.DeleteModification)

	// -------- Daily orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders/preview", s.PreviewOrders)
	api.POST("/orders/generate", s.GenerateOrders)
	api.DELETE("/orders", s.DeleteOrdersByDate)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus)

	// -------- Sales --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.CreateSale)
	api.POST("/sales/bulk", s.CreateSalesBulk)
	api.POST("/sales/bulk-delete", s.DeleteSalesBulk)
	api.GET("/sales/:id", s.GetSaleByID)
	api.DELETE("/sales/:id", s.DeleteSale)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/generate", s.GenerateInvoice)
	api.POST("/invoices/generate-bulk", s.GenerateInvoicesBulk)
	api.POST("/invoices/bulk-delete", s.DeleteInvoicesBulk)
	api.POST("/invoices/:id/send", s.MarkInvoiceSent)
	api.GET("/invoices/:id/render", s.RenderInvoicePDF)
	api.DELETE("/invoices/:id", s.DeleteInvoice)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.RecordPayment)
	api.GET("/payments/pools", s.GetAllocationPools)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.DELETE("/payments/:id", s.DeletePayment)

	// -------- Outstanding --------
	api.GET("/outstanding", s.GetOutstandingDashboard)
	api.GET("/outstanding/report", s.GetOutstandingReport)
	api.GET("/outstanding/report/render", s.RenderStatementPDF)
}

func (s *Server) registerPrintRoutes() {
	s.engine.GET("/print", s.PrintReport)
}
