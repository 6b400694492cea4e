package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"
	"github.com/XTeam-Pro/AIMLM/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminAdjustUserWalletRequest 管理端用户余额调整请求
type AdminAdjustUserWalletRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Operation string `json:"operation"` // add/subtract
	Currency  string `json:"currency"`
	Remark    string `json:"remark"`
}

// GetAdminUserWallet 管理端获取用户钱包信息
func (h *Handler) GetAdminUserWallet(c *gin.Context) {
	userID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "用户 ID 无效", nil)
		return
	}
	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取用户失败", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "用户不存在", nil)
		return
	}
	account, err := h.WalletService.GetAccount(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取钱包信息失败", err)
		return
	}
	response.Success(c, gin.H{
		"user":    user,
		"account": account,
	})
}

// GetAdminUserWalletTransactions 管理端获取用户钱包流水
func (h *Handler) GetAdminUserWalletTransactions(c *gin.Context) {
	userID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "用户 ID 无效", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.WalletTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		Type:      strings.TrimSpace(c.Query("type")),
		Direction: strings.TrimSpace(c.Query("direction")),
	}
	transactions, total, err := h.WalletService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取钱包流水失败", err)
		return
	}
	response.SuccessWithPage(c, transactions, buildPagination(page, pageSize, total))
}

// AdjustAdminUserWallet 管理端增减用户余额
func (h *Handler) AdjustAdminUserWallet(c *gin.Context) {
	userID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "用户 ID 无效", nil)
		return
	}
	var req AdminAdjustUserWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "金额格式错误", err)
		return
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "金额必须大于零", nil)
		return
	}
	op := strings.ToLower(strings.TrimSpace(req.Operation))
	delta := amount
	if op == "" {
		op = "add"
	}
	if op == "subtract" {
		delta = amount.Neg()
	}
	if op != "add" && op != "subtract" {
		respondError(c, response.CodeBadRequest, "操作类型无效", nil)
		return
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}

	account, txn, err := h.WalletService.AdminAdjustBalance(service.WalletAdjustInput{
		UserID:   userID,
		Delta:    models.NewMoneyFromDecimal(delta),
		Currency: currency,
		Remark:   strings.TrimSpace(req.Remark),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWalletInvalidAmount):
			respondError(c, response.CodeBadRequest, "金额无效", nil)
		case errors.Is(err, service.ErrWalletInsufficientBalance):
			respondError(c, response.CodeBadRequest, "余额不足", nil)
		default:
			respondError(c, response.CodeInternal, "调整余额失败", err)
		}
		return
	}

	response.Success(c, gin.H{
		"account":     account,
		"transaction": txn,
	})
}
