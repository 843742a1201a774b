package controller

import (
	"fashion-order-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes arma las rutas protegidas. auth es el middleware que deja la sesión en el request.
func RegisterRoutes(r gin.IRouter, orders *OrderController, coupons *CouponController, auth gin.HandlerFunc) {
	// Rutas protegidas (requieren token)
	authed := r.Group("/")
	authed.Use(auth)

	authed.POST("/orders", orders.PlaceOrder)
	authed.PATCH("/orders/:orderId/status", orders.UpdateStatus)
	authed.GET("/orders/mine", orders.GetMyOrders)
	authed.GET("/orders/:orderId", orders.GetOrder)
	authed.GET("/orders/:orderId/latest", orders.GetLatestStatus)
	authed.POST("/coupons/quote", coupons.Quote)

	// Rutas admin
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders/all", orders.GetAllOrders)
	admin.GET("/orders/state/:state", orders.GetAllOrdersByState)
	admin.GET("/orders/summary", orders.GetSummary)
	admin.GET("/orders-with-status", orders.GetAllOrdersWithLatest)

	admin.GET("/coupons", coupons.List)
	admin.POST("/coupons", coupons.Create)
	admin.GET("/coupons/:code", coupons.Get)
	admin.PUT("/coupons/:code", coupons.Update)
	admin.DELETE("/coupons/:code", coupons.Deactivate)
}
