package public

import (
	"strconv"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyWallet 获取当前用户钱包信息
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "获取钱包信息失败", err)
		return
	}
	response.Success(c, account)
}

// GetMyWalletTransactions 获取当前用户钱包流水
func (h *Handler) GetMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.WalletTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    uid,
		Type:      strings.TrimSpace(c.Query("type")),
		Direction: strings.TrimSpace(c.Query("direction")),
	}

	txns, total, err := h.WalletService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取钱包流水失败", err)
		return
	}

	response.SuccessWithPage(c, txns, buildPagination(page, pageSize, total))
}
