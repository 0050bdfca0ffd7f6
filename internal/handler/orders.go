package handler

import (
	"net/http"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.LedgerService }

func NewOrdersHandler(svc service.LedgerService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Create godoc
// @Summary  Create an order, recording its deposit payment when deposit > 0
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body dto.CreateOrderRequest true "order"
// @Success  201 {object} model.Order
// @Failure  404 {object} apierror.APIError
// @Failure  422 {object} apierror.ValidationError
// @Router   /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary  Receive the final payment and recognize the order as a sale
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string true "order id"
// @Param    body body dto.CompleteOrderRequest true "final payment"
// @Success  200 {object} dto.CompletionResult
// @Failure  409 {object} apierror.APIError "already completed or terminal"
// @Failure  503 {object} apierror.APIError "retryable"
// @Router   /v1/orders/{id}/complete [post]
func (h *OrdersHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CompleteOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompleteOrderPayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Payments lists the payments linked to the order.
func (h *OrdersHandler) Payments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.svc.GetOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.ListPayments(c.Request.Context(), dto.PaymentFilter{OrderID: id.String()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
