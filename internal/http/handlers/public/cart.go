package public

import (
	"errors"
	"strconv"

	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListByUser(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取购物车失败", err)
		return
	}

	response.Success(c, gin.H{"items": items})
}

// UpsertCartItemRequest 添加/更新购物车条目请求
type UpsertCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpsertCartItem 添加或更新购物车条目
func (h *Handler) UpsertCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpsertCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "购物车条目无效", nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "商品不存在", nil)
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, response.CodeBadRequest, "商品已下架", nil)
		default:
			respondError(c, response.CodeInternal, "更新购物车失败", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 删除购物车条目
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "商品 ID 无效", nil)
		return
	}

	if err := h.CartService.RemoveItem(userID, uint(productID)); err != nil {
		respondError(c, response.CodeInternal, "删除购物车条目失败", err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(userID); err != nil {
		respondError(c, response.CodeInternal, "清空购物车失败", err)
		return
	}

	response.Success(c, gin.H{"cleared": true})
}
