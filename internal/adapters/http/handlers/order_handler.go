package handlers

import (
	"errors"
	"strconv"
	"time"

	"cleanorder-api/internal/adapters/http/middleware"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/core/services"
	"cleanorder-api/internal/pkg/pagination"
	"cleanorder-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// getClientIP gets client IP address
func getClientIP(c *fiber.Ctx) string {
	ip := c.Get("X-Real-IP")
	if ip == "" {
		ip = c.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = c.IP()
	}
	return ip
}

// orderError maps service errors onto responses
func orderError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return response.NotFound(c, "Order not found")
	case errors.Is(err, services.ErrForbiddenOrder):
		return response.Forbidden(c, "Order is assigned to another employee")
	case errors.Is(err, services.ErrEmployeeNotFound):
		return response.NotFound(c, "Employee not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, "Status transition not allowed")
	case errors.Is(err, services.ErrStatusConflict):
		return response.Conflict(c, "Order status changed, reload and try again")
	case errors.Is(err, services.ErrFolioConflict):
		return response.Conflict(c, "Could not assign a folio, try again")
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.BadRequest(c, "Invalid status")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid order data")
	default:
		return response.InternalServerError(c, fallback)
	}
}

func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// List lists orders
// @Summary List orders
// @Description List the orders assigned to the current employee (all orders for admins)
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(200)
// @Param status query int false "Filter by status id (1 AGENDADO, 2 EN PROCESO, 3 REALIZADO)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	input := &services.ListOrdersInput{
		Page:  params.Page,
		Limit: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		id, err := strconv.ParseUint(status, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid status")
		}
		input.StatusID = domain.StatusID(id)
	}

	result, err := h.orderService.List(c.UserContext(), session, input)
	if err != nil {
		return orderError(c, err, "Failed to list orders")
	}

	return response.Success(c, "Orders retrieved successfully", result)
}

// Summary counts orders per status
// @Summary Order summary
// @Description Count the current employee's orders per status
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /orders/summary [get]
func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.orderService.Summary(c.UserContext(), session)
	if err != nil {
		return orderError(c, err, "Failed to summarize orders")
	}

	return response.Success(c, "Summary retrieved successfully", summary)
}

// GetByID gets an order by ID
// @Summary Get order by ID
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid order ID")
	}

	order, err := h.orderService.Get(c.UserContext(), session, id)
	if err != nil {
		return orderError(c, err, "Failed to get order")
	}

	return response.Success(c, "Order retrieved successfully", order.ToResponse())
}

// ChangeStatus moves an order to the next status
// @Summary Change order status
// @Description Move an order one step forward: 1 AGENDADO -> 2 EN PROCESO -> 3 REALIZADO
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param statusId path int true "Target status id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/status/{statusId} [put]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid order ID")
	}
	statusID, ok := parseID(c, "statusId")
	if !ok {
		return response.BadRequest(c, "Invalid status")
	}

	order, err := h.orderService.ChangeStatus(c.UserContext(), session, &services.ChangeStatusInput{
		OrderID:   id,
		ToStatus:  domain.StatusID(statusID),
		IPAddress: getClientIP(c),
	})
	if err != nil {
		return orderError(c, err, "Failed to change order status")
	}

	return response.Success(c, "Order status updated successfully", order.ToResponse())
}

// CreateOrderRequest represents create order request
type CreateOrderRequest struct {
	EmpleadoID    uint    `json:"empleadoId"`
	Cliente       string  `json:"cliente"`
	RegionID      *uint   `json:"regionId,omitempty"`
	Direccion     string  `json:"direccion"`
	Observaciones string  `json:"observaciones,omitempty"`
	HorasTrabajo  float64 `json:"horasTrabajo"`
	FechaAgendada string  `json:"fechaAgendada,omitempty"`
}

// Create creates a new order
// @Summary Create order
// @Description Schedule a new order for an employee (Admin only)
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOrderRequest true "Order data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.EmpleadoID == 0 {
		return response.BadRequest(c, "Employee is required")
	}
	if req.HorasTrabajo < 0 {
		return response.BadRequest(c, "Hours must not be negative")
	}

	input := &services.CreateOrderInput{
		EmployeeID:    req.EmpleadoID,
		Cliente:       req.Cliente,
		RegionID:      req.RegionID,
		Direccion:     req.Direccion,
		Observaciones: req.Observaciones,
		HorasTrabajo:  req.HorasTrabajo,
	}

	if req.FechaAgendada != "" {
		scheduled, err := time.Parse(time.RFC3339, req.FechaAgendada)
		if err != nil {
			return response.BadRequest(c, "fechaAgendada must be RFC3339")
		}
		input.FechaAgendada = &scheduled
	}

	order, err := h.orderService.Create(c.UserContext(), input)
	if err != nil {
		return orderError(c, err, "Failed to create order")
	}

	return response.Created(c, "Order created successfully", order.ToResponse())
}
