package controller

import (
	"errors"
	"net/http"

	"fashion-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError traduce errores de servicio a códigos HTTP.
func respondError(c *gin.Context, err error) {
	var couponErr *service.CouponError
	switch {
	case errors.As(err, &couponErr):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrCouponNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error(), "reason": service.ReasonCode(err)})
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFinalState),
		errors.Is(err, service.ErrOrderAlreadyExists),
		errors.Is(err, service.ErrDuplicateCode),
		errors.Is(err, service.ErrStaleStatus):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidSubtotal),
		errors.Is(err, service.ErrInvalidCoupon):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
