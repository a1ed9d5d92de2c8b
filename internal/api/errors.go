package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/salesman-paypal/internal/checkout"
	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/payment"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// writeError maps a domain error to an HTTP response. gatewayStatus is the
// code used for PayPal API failures, which differs between the capture
// callback and the rest of the surface.
func writeError(c *gin.Context, err error, gatewayStatus int) {
	var (
		validationErr *payment.ValidationError
		gatewayErr    *paypal.GatewayError
		configErr     *config.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &gatewayErr):
		c.JSON(gatewayStatus, gin.H{"error": gatewayErr.Error(), "gateway": gatewayErr.JSON()})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &configErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErr.Error()})
	case errors.Is(err, checkout.ErrNotFound),
		errors.Is(err, checkout.ErrMissingBasket),
		errors.Is(err, checkout.ErrMissingOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrInvalidReference),
		errors.Is(err, checkout.ErrMissingCapture):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
