package server

import (
	"time"

	"order-service/internal/domain"
	"order-service/internal/service"

	"github.com/shopspring/decimal"
)

type createItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (r createItemRequest) validate() string {
	if r.Name == "" {
		return "name must not be blank"
	}
	if !r.Price.IsPositive() {
		return "price must be positive"
	}
	return ""
}

type createOrderLineRequest struct {
	ItemID   *int64 `json:"itemId"`
	Quantity *int   `json:"quantity"`
}

type createOrderRequest struct {
	UserID int64                    `json:"userId"`
	Items  []createOrderLineRequest `json:"items"`
}

type createUserOrderRequest struct {
	// any caller-supplied userId is ignored for self-service creation
	Items []createOrderLineRequest `json:"items"`
}

func validateOrderLines(items []createOrderLineRequest) ([]service.CreateOrderLine, string) {
	if len(items) == 0 {
		return nil, "items must not be empty"
	}
	lines := make([]service.CreateOrderLine, 0, len(items))
	for _, item := range items {
		if item.ItemID == nil {
			return nil, "itemId must be provided"
		}
		if item.Quantity == nil {
			return nil, "quantity must be provided"
		}
		if *item.Quantity <= 0 {
			return nil, "quantity must be greater than zero"
		}
		lines = append(lines, service.CreateOrderLine{ItemID: *item.ItemID, Quantity: *item.Quantity})
	}
	return lines, ""
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type itemResponse struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{ID: item.ID, Name: item.Name, Price: item.Price}
}

type itemPageResponse struct {
	Content       []itemResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
}

type orderLineResponse struct {
	ID       int64        `json:"id"`
	Item     itemResponse `json:"item"`
	Quantity int          `json:"quantity"`
}

type orderUserResponse struct {
	ID           int64               `json:"id"`
	Status       domain.OrderStatus  `json:"status"`
	CreationDate time.Time           `json:"creationDate"`
	User         *domain.UserProfile `json:"user"`
	Items        []orderLineResponse `json:"items"`
}

func toOrderUserResponse(result service.OrderUserResult) orderUserResponse {
	lines := make([]orderLineResponse, 0, len(result.Order.Lines))
	for _, line := range result.Order.Lines {
		lines = append(lines, orderLineResponse{
			ID:       line.ID,
			Item:     toItemResponse(line.Item),
			Quantity: line.Quantity,
		})
	}
	return orderUserResponse{
		ID:           result.Order.ID,
		Status:       result.Order.Status,
		CreationDate: result.Order.CreationDate,
		User:         result.User,
		Items:        lines,
	}
}
