package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourorg/salesman-paypal/internal/checkout"
	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/logger"
	"github.com/yourorg/salesman-paypal/internal/monitor"
	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/payment"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// Handler serves the checkout routes and the PayPal redirect callbacks.
type Handler struct {
	payment   *payment.PayPalPayment
	store     checkout.Store
	fulfiller *checkout.Fulfiller
	monitor   *monitor.ContractMonitor
	settings  *config.Settings
}

// PaymentResponse is returned once a PayPal order has been created.
type PaymentResponse struct {
	Reference     string         `json:"reference"`
	PayPalOrderID string         `json:"paypal_order_id"`
	Status        payment.Status `json:"status"`
	ApproveURL    string         `json:"approve_url,omitempty"`
}

// CaptureResponse is returned by the capture and return callbacks.
type CaptureResponse struct {
	PayPalOrderID string         `json:"paypal_order_id,omitempty"`
	Status        payment.Status `json:"status"`
	Order         *payable.Order `json:"order,omitempty"`
}

type refundRequest struct {
	TransactionID string          `json:"transaction_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// CheckoutBasket validates the basket body and starts a PayPal payment for
// it. The basket is stored only once PayPal has accepted the payment, so a
// rejected basket never replaces one already stored under the same id.
func (h *Handler) CheckoutBasket(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if h.monitor != nil {
		valid, violations, err := h.monitor.Validate(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": monitor.FormatErrors(violations)})
			return
		}
	}

	var basket payable.Basket
	if err := json.Unmarshal(body, &basket); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	order, err := h.payment.BasketPayment(ctx, &basket, payment.RequestFromHTTP(c.Request, basket.Owner))
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}

	if _, err := h.store.Basket(basket.BasketID); err == nil {
		logger.FromCtx(ctx).Info("Replacing stored basket", zap.String("basket_id", basket.BasketID))
	}
	if err := h.store.SaveBasket(&basket); err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusCreated, paymentResponse(&basket, order))
}

// PayOrder starts a PayPal payment for an existing order.
func (h *Handler) PayOrder(c *gin.Context) {
	order, err := h.store.Order(c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}

	created, err := h.payment.OrderPayment(c.Request.Context(), order, payment.RequestFromHTTP(c.Request, order.Owner))
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusCreated, paymentResponse(order, created))
}

// Return handles the redirect back from PayPal after the customer approved
// the payment. PayPal passes its order id as the "token" query parameter.
func (h *Handler) Return(c *gin.Context) {
	resp := CaptureResponse{Status: payment.StatusPending}
	if token := c.Query("token"); token != "" {
		var err error
		resp, err = h.captureAndFulfil(c, token)
		if err != nil {
			writeError(c, err, http.StatusBadRequest)
			return
		}
	}

	if h.settings.ReturnURL != "" {
		c.Redirect(http.StatusFound, h.settings.ReturnURL)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles the redirect back from PayPal when the customer abandoned
// the payment.
func (h *Handler) Cancel(c *gin.Context) {
	logger.FromCtx(c.Request.Context()).Info("PayPal payment cancelled", zap.String("paypal_order_id", c.Query("token")))

	if h.settings.CancelURL != "" {
		c.Redirect(http.StatusFound, h.settings.CancelURL)
		return
	}
	c.JSON(http.StatusOK, CaptureResponse{PayPalOrderID: c.Query("token"), Status: payment.StatusCancelled})
}

// Capture captures an approved PayPal order. Gateway errors are answered with
// 400 and PayPal's own error body.
func (h *Handler) Capture(c *gin.Context) {
	resp, err := h.captureAndFulfil(c, c.Param("order_id"))
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefundOrder refunds a payment recorded on an order. A missing amount
// refunds the whole capture.
func (h *Handler) RefundOrder(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	order, err := h.store.Order(c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	if _, ok := order.FindPayment(req.TransactionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no payment " + req.TransactionID + " on order " + order.OrderID})
		return
	}

	result, err := h.payment.RefundPayment(c.Request.Context(), req.TransactionID, req.Amount, order.Currency())
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) captureAndFulfil(c *gin.Context, orderID string) (CaptureResponse, error) {
	ctx := c.Request.Context()
	result, err := h.payment.CaptureOrder(ctx, orderID)
	if err != nil {
		return CaptureResponse{}, err
	}

	resp := CaptureResponse{PayPalOrderID: orderID, Status: result.Status}
	if result.Status != payment.StatusPaid {
		logger.FromCtx(ctx).Warn("PayPal order not completed",
			zap.String("paypal_order_id", orderID),
			zap.String("status", string(result.Status)))
		return resp, nil
	}

	order, err := h.fulfiller.Fulfil(ctx, result.Order)
	if err != nil {
		return CaptureResponse{}, err
	}
	resp.Order = order
	return resp, nil
}

func paymentResponse(obj payable.Payable, order *paypal.Order) PaymentResponse {
	return PaymentResponse{
		Reference:     payable.Reference(obj),
		PayPalOrderID: order.ID,
		Status:        payment.StatusFromOrder(order.Status),
		ApproveURL:    order.Link("approve"),
	}
}
