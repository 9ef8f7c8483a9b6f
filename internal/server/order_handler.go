package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"order-service/internal/domain"
	"order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	orders service.OrderService
}

func (h *orderHandler) getById(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	result, err := h.orders.GetOrderById(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		respondError(c, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponse(*result))
}

func (h *orderHandler) getByIds(c *gin.Context) {
	ids, msg := parseIds(c.QueryArray("ids"))
	if msg != "" {
		respondBadRequest(c, msg)
		return
	}

	results, err := h.orders.GetOrdersByIds(c.Request.Context(), identityFrom(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponses(results))
}

func (h *orderHandler) getByStatuses(c *gin.Context) {
	var statuses []domain.OrderStatus
	for _, raw := range splitCSV(c.QueryArray("statuses")) {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		statuses = append(statuses, status)
	}
	if len(statuses) == 0 {
		respondBadRequest(c, "statuses must not be empty")
		return
	}

	results, err := h.orders.GetOrdersByStatuses(c.Request.Context(), identityFrom(c), statuses)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponses(results))
}

// createForUser is the admin-only variant with an explicit target user.
func (h *orderHandler) createForUser(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	lines, msg := validateOrderLines(req.Items)
	if msg != "" {
		respondBadRequest(c, msg)
		return
	}

	result, err := h.orders.CreateOrderForUser(c.Request.Context(), identityFrom(c), req.UserID, lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponse(*result))
}

// create is the self-service variant; the authenticated caller owns the
// order regardless of anything else in the payload.
func (h *orderHandler) create(c *gin.Context) {
	var req createUserOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	lines, msg := validateOrderLines(req.Items)
	if msg != "" {
		respondBadRequest(c, msg)
		return
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), identityFrom(c), lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponse(*result))
}

func (h *orderHandler) updateStatus(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.orders.UpdateOrderStatusById(c.Request.Context(), identityFrom(c), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderUserResponse(*result))
}

func (h *orderHandler) delete(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrderById(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toOrderUserResponses(results []service.OrderUserResult) []orderUserResponse {
	out := make([]orderUserResponse, 0, len(results))
	for _, result := range results {
		out = append(out, toOrderUserResponse(result))
	}
	return out
}

// parseIds accepts both repeated params and comma-separated lists.
func parseIds(raw []string) ([]int64, string) {
	var ids []int64
	for _, part := range splitCSV(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Sprintf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, "ids must not be empty"
	}
	return ids, ""
}

func splitCSV(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
