package controller

import (
	"net/http"

	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/middleware"
	"fashion-order-service/internal/model"
	"fashion-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderStatusService
}

func NewOrderController(s *service.OrderStatusService) *OrderController {
	return &OrderController{Service: s}
}

// POST /orders: el dueño es el usuario del token; staff puede crear a nombre de otro.
func (ctl *OrderController) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.Session(c)
	if req.UserID == "" || !user.IsAdmin() {
		req.UserID = user.ID
	}

	o, err := ctl.Service.PlaceOrder(c.Request.Context(), req, "api")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// PATCH /orders/:orderId/status: status puede venir como texto o como número
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	o, err := ctl.Service.UpdateStatus(
		c.Request.Context(),
		orderID,
		req.Status,
		req.Reason,
		middleware.Session(c).Actor(),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderToResponse(o))
}

// GET /orders/mine
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := ctl.Service.GetByUserID(c.Request.Context(), middleware.Session(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId
func (ctl *OrderController) GetOrder(c *gin.Context) {
	o, ok := ctl.visibleOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o)
}

// GET /orders/:orderId/latest
func (ctl *OrderController) GetLatestStatus(c *gin.Context) {
	o, ok := ctl.visibleOrder(c)
	if !ok {
		return
	}

	last := o.CurrentRecord()
	if last == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no latest state found"})
		return
	}
	c.JSON(http.StatusOK, last)
}

// GET /admin/orders/all
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders/state/:state: acepta sinónimos y códigos (shipped, 3...)
func (ctl *OrderController) GetAllOrdersByState(c *gin.Context) {
	orders, err := ctl.Service.GetByStatus(c.Request.Context(), c.Param("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders-with-status
func (ctl *OrderController) GetAllOrdersWithLatest(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		out = append(out, gin.H{
			"orderId":  o.OrderID,
			"userId":   o.UserID,
			"status":   o.Step,
			"total":    o.Total,
			"shipping": o.Shipping,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/orders/summary
func (ctl *OrderController) GetSummary(c *gin.Context) {
	sum, err := ctl.Service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// visibleOrder busca la orden y corta con 404/403 si no se puede ver.
func (ctl *OrderController) visibleOrder(c *gin.Context) (*model.Order, bool) {
	user := middleware.Session(c)
	ord, err := ctl.Service.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !user.IsAdmin() && ord.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return nil, false
	}
	return ord, true
}
