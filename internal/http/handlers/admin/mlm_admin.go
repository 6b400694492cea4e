package admin

import (
	"strconv"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/queue"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetGenerationMatrix 获取世代奖金比例矩阵
func (h *Handler) GetGenerationMatrix(c *gin.Context) {
	rank := strings.TrimSpace(c.Query("rank"))

	var (
		entries []models.GenerationBonusMatrix
		err     error
	)
	if rank != "" {
		entries, err = h.GenerationMatrix.ListByRank(rank)
	} else {
		entries, err = h.GenerationMatrix.ListAll()
	}
	if err != nil {
		respondError(c, response.CodeInternal, "获取奖金矩阵失败", err)
		return
	}

	response.Success(c, gin.H{"entries": entries})
}

// UpsertGenerationMatrixRequest 更新矩阵条目请求
type UpsertGenerationMatrixRequest struct {
	Rank            string  `json:"rank" binding:"required"`
	Generation      int     `json:"generation" binding:"required"`
	BonusPercentage float64 `json:"bonus_percentage"`
}

// UpsertGenerationMatrix 写入世代奖金比例矩阵条目
func (h *Handler) UpsertGenerationMatrix(c *gin.Context) {
	var req UpsertGenerationMatrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if req.Generation < 1 || req.BonusPercentage < 0 {
		respondError(c, response.CodeBadRequest, "矩阵条目无效", nil)
		return
	}

	entry := &models.GenerationBonusMatrix{
		Rank:            strings.TrimSpace(req.Rank),
		Generation:      req.Generation,
		BonusPercentage: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.BonusPercentage)),
	}
	if err := h.GenerationMatrix.Upsert(entry); err != nil {
		respondError(c, response.CodeInternal, "保存矩阵条目失败", err)
		return
	}

	response.Success(c, entry)
}

// RunPlacementCron 手动触发双轨安置扫描
func (h *Handler) RunPlacementCron(c *gin.Context) {
	placed, err := h.BinaryTreeService.RunPlacementCron()
	if err != nil {
		respondError(c, response.CodeInternal, "安置扫描失败", err)
		return
	}

	requestLog(c).Infow("admin_placement_cron_done", "placed", placed)
	response.Success(c, gin.H{"placed": placed})
}

// RunGenerationBatchRequest 世代奖金批次请求
type RunGenerationBatchRequest struct {
	Period string `json:"period"`
	Async  bool   `json:"async"`
}

// RunGenerationBatch 运行世代奖金批次（可入队异步执行）
func (h *Handler) RunGenerationBatch(c *gin.Context) {
	var req RunGenerationBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数错误", err)
			return
		}
	}
	period := strings.TrimSpace(req.Period)

	if req.Async {
		if h.QueueClient == nil || !h.QueueClient.Enabled() {
			respondError(c, response.CodeInternal, "队列不可用", nil)
			return
		}
		if err := h.QueueClient.EnqueueGenerationBatch(queue.GenerationBatchPayload{Period: period}); err != nil {
			respondError(c, response.CodeInternal, "入队失败", err)
			return
		}
		response.Success(c, gin.H{"enqueued": true, "period": period})
		return
	}

	result, err := h.GenerationBonusService.CalculateAndApply(period)
	if err != nil {
		respondError(c, response.CodeInternal, "世代奖金批次失败", err)
		return
	}

	requestLog(c).Infow("admin_generation_batch_done",
		"period", result.Period,
		"source_count", result.SourceCount,
		"paid_count", result.PaidCount,
	)
	response.Success(c, result)
}

// GetAdminBonuses 获取奖金记录列表
func (h *Handler) GetAdminBonuses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "用户 ID 无效", nil)
			return
		}
		userID = uint(parsed)
	}

	filter := repository.BonusListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		BonusType: strings.TrimSpace(c.Query("type")),
		Period:    strings.TrimSpace(c.Query("period")),
	}

	bonuses, total, err := h.BonusRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取奖金记录失败", err)
		return
	}

	response.SuccessWithPage(c, bonuses, buildPagination(page, pageSize, total))
}

// GetAdminTransactions 获取业务交易列表
func (h *Handler) GetAdminTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var buyerID uint
	if raw := strings.TrimSpace(c.Query("buyer_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "用户 ID 无效", nil)
			return
		}
		buyerID = uint(parsed)
	}

	filter := repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		BuyerID:  buyerID,
		Type:     strings.TrimSpace(c.Query("type")),
		Status:   strings.TrimSpace(c.Query("status")),
	}

	transactions, total, err := h.TransactionRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取交易列表失败", err)
		return
	}

	response.SuccessWithPage(c, transactions, buildPagination(page, pageSize, total))
}
