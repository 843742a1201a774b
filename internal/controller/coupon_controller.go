package controller

import (
	"net/http"

	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/middleware"
	"fashion-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CouponController struct {
	Service *service.CouponService
}

func NewCouponController(s *service.CouponService) *CouponController {
	return &CouponController{Service: s}
}

// POST /coupons/quote: no consume usos
func (ctl *CouponController) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := ctl.Service.Quote(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GET /admin/coupons
func (ctl *CouponController) List(c *gin.Context) {
	coupons, err := ctl.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// POST /admin/coupons
func (ctl *CouponController) Create(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon, err := ctl.Service.Create(c.Request.Context(), req, middleware.Session(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// GET /admin/coupons/:code
func (ctl *CouponController) Get(c *gin.Context) {
	coupon, err := ctl.Service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// PUT /admin/coupons/:code: reemplaza los campos editables, used_count no se toca
func (ctl *CouponController) Update(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon, err := ctl.Service.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// DELETE /admin/coupons/:code: baja lógica
func (ctl *CouponController) Deactivate(c *gin.Context) {
	if err := ctl.Service.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
