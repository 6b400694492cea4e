package public

import (
	"errors"

	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePurchaseRequest 购买请求
type CreatePurchaseRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// CreatePurchase 用户余额购买商品
func (h *Handler) CreatePurchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	result, err := h.PurchaseService.ProcessPurchase(userID, req.ProductID)
	if err != nil {
		respondPurchaseError(c, err)
		return
	}

	response.Success(c, result)
}

// CreateSaleRequest 经销商向其他用户销售请求
type CreateSaleRequest struct {
	BuyerID   uint `json:"buyer_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
}

// CreateSale 经销商发起销售，货款按比例分账
func (h *Handler) CreateSale(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	result, err := h.PurchaseService.ProcessSale(sellerID, req.BuyerID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrSaleToSelf) {
			respondError(c, response.CodeBadRequest, "不能向自己销售", nil)
			return
		}
		respondPurchaseError(c, err)
		return
	}

	response.Success(c, result)
}

func respondPurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "商品不存在", nil)
	case errors.Is(err, service.ErrProductInactive):
		respondError(c, response.CodeBadRequest, "商品已下架", nil)
	case errors.Is(err, service.ErrProductPriceInvalid):
		respondError(c, response.CodeBadRequest, "商品价格无效", nil)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "用户不存在", nil)
	case errors.Is(err, service.ErrUserDisabled):
		respondError(c, response.CodeBadRequest, "账户已被禁用", nil)
	case errors.Is(err, service.ErrWalletInsufficientBalance):
		respondError(c, response.CodeBadRequest, "余额不足", nil)
	case errors.Is(err, service.ErrCompanyAccountNotConfigured):
		respondError(c, response.CodeInternal, "公司账户未配置", err)
	default:
		respondError(c, response.CodeInternal, "购买失败", err)
	}
}
