package service

import (
	"errors"

	"fashion-order-service/internal/model"
	"fashion-order-service/internal/repository"
)

// Errores de negocio exportados (los usa el controller)
var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrFinalState         = errors.New("no se puede cambiar el estado de una orden cancelada")
	ErrOrderAlreadyExists = errors.New("la orden ya fue inicializada previamente")
	ErrUnknownStatus      = errors.New("estado desconocido")
	ErrInvalidSubtotal    = errors.New("el subtotal no puede ser negativo")
	ErrInvalidCoupon      = errors.New("datos de cupón inválidos")

	ErrOrderNotFound  = repository.ErrNotFound
	ErrCouponNotFound = repository.ErrCouponNotFound
	ErrDuplicateCode  = repository.ErrDuplicateCode
	ErrStaleStatus    = repository.ErrStaleStatus
)

// Códigos estables para el front. No cambiar sin avisar.
const (
	ReasonCouponNotFound  = "coupon_not_found"
	ReasonCouponInactive  = "coupon_inactive"
	ReasonCouponExpired   = "coupon_expired"
	ReasonCouponExhausted = "coupon_exhausted"
	ReasonBelowMinimum    = "below_minimum"
)

// CouponError indica por qué no se aplicó un cupón al hacer una orden.
type CouponError struct {
	Code   string
	Reason error
}

func (e *CouponError) Error() string {
	return "cupón " + e.Code + ": " + e.Reason.Error()
}

func (e *CouponError) Unwrap() error {
	return e.Reason
}

// ReasonCode traduce un error de cupón a su código estable; "" si no es uno.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrCouponInactive):
		return ReasonCouponInactive
	case errors.Is(err, model.ErrCouponExpired):
		return ReasonCouponExpired
	case errors.Is(err, model.ErrCouponExhausted):
		return ReasonCouponExhausted
	case errors.Is(err, model.ErrBelowMinimum):
		return ReasonBelowMinimum
	case errors.Is(err, repository.ErrCouponNotFound):
		return ReasonCouponNotFound
	}
	return ""
}
