package server

import (
	"fmt"
	"net/http"
	"strconv"

	"order-service/internal/domain"
	"order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type itemHandler struct {
	items service.ItemService
}

func (h *itemHandler) getById(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	item, err := h.items.GetById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		respondError(c, fmt.Errorf("item with id %d: %w", id, domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, toItemResponse(*item))
}

func (h *itemHandler) getAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.items.GetAll(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	content := make([]itemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		content = append(content, toItemResponse(item))
	}
	c.JSON(http.StatusOK, itemPageResponse{
		Content:       content,
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
	})
}

func (h *itemHandler) create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	item, err := h.items.Create(c.Request.Context(), identityFrom(c), req.Name, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(*item))
}

func (h *itemHandler) delete(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "id must be a number")
		return 0, false
	}
	return id, true
}
