package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yourorg/salesman-paypal/internal/checkout"
	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/monitor"
	"github.com/yourorg/salesman-paypal/internal/payment"
)

// ServiceName is reported to the tracer and used as the otelgin server name.
const ServiceName = "salesman-paypal"

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Payment   *payment.PayPalPayment
	Store     checkout.Store
	Fulfiller *checkout.Fulfiller
	Monitor   *monitor.ContractMonitor
	Settings  *config.Settings
}

// NewRouter wires the checkout and PayPal callback routes.
func NewRouter(d Deps) *gin.Engine {
	h := &Handler{
		payment:   d.Payment,
		store:     d.Store,
		fulfiller: d.Fulfiller,
		monitor:   d.Monitor,
		settings:  d.Settings,
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(ServiceName), RequestID(), AccessLog())

	router.POST("/checkout/basket", h.CheckoutBasket)
	router.POST("/checkout/orders/:id/pay", h.PayOrder)
	router.POST("/orders/:id/refund", h.RefundOrder)

	router.GET(payment.ReturnPath, h.Return)
	router.GET(payment.CancelPath, h.Cancel)
	router.POST(payment.CapturePath, h.Capture)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}
