package public

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/cache"
	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/gin-gonic/gin"
)

const mlmProfileCacheTTL = 30 * time.Second

func mlmProfileCacheKey(userID uint) string {
	return fmt.Sprintf("mlm:profile:%d", userID)
}

// GetMLMProfile 获取当前用户的 MLM 档案与奖金汇总
//
// 汇总结果缓存 30 秒，奖金结算后的展示延迟在可接受范围内
func (h *Handler) GetMLMProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	cacheKey := mlmProfileCacheKey(userID)
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	profile, err := h.ProfileRepo.GetByUserID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取档案失败", err)
		return
	}
	if profile == nil {
		respondError(c, response.CodeNotFound, "档案不存在", nil)
		return
	}

	totals := gin.H{}
	for _, bonusType := range []string{
		constants.BonusTypeSponsor,
		constants.BonusTypeBinary,
		constants.BonusTypeGeneration,
		constants.BonusTypeRank,
	} {
		sum, sumErr := h.BonusRepo.SumByUserAndType(userID, bonusType)
		if sumErr != nil {
			respondError(c, response.CodeInternal, "获取奖金汇总失败", sumErr)
			return
		}
		totals[strings.ToLower(bonusType)] = sum
	}

	data := gin.H{
		"profile":      profile,
		"bonus_totals": totals,
	}
	_ = cache.SetJSON(c.Request.Context(), cacheKey, data, mlmProfileCacheTTL)
	response.Success(c, data)
}

// DownlineEntry 直接下级视图
type DownlineEntry struct {
	UserID      uint               `json:"user_id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	Level       int                `json:"level"`
	Profile     *models.MLMProfile `json:"profile,omitempty"`
}

// GetMLMDownline 获取当前用户的直接下级
func (h *Handler) GetMLMDownline(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	edges, err := h.HierarchyService.DirectDescendants(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取下级列表失败", err)
		return
	}

	ids := make([]uint, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.DescendantID)
	}

	users, err := h.UserRepo.ListByIDs(ids)
	if err != nil {
		respondError(c, response.CodeInternal, "获取下级列表失败", err)
		return
	}
	userByID := make(map[uint]models.User, len(users))
	for _, user := range users {
		userByID[user.ID] = user
	}

	profiles, err := h.ProfileRepo.ListByUserIDs(ids)
	if err != nil {
		respondError(c, response.CodeInternal, "获取下级列表失败", err)
		return
	}
	profileByUserID := make(map[uint]models.MLMProfile, len(profiles))
	for _, profile := range profiles {
		profileByUserID[profile.UserID] = profile
	}

	entries := make([]DownlineEntry, 0, len(edges))
	for _, edge := range edges {
		entry := DownlineEntry{
			UserID: edge.DescendantID,
			Level:  edge.Level,
		}
		if user, ok := userByID[edge.DescendantID]; ok {
			entry.Email = user.Email
			entry.DisplayName = user.DisplayName
		}
		if profile, ok := profileByUserID[edge.DescendantID]; ok {
			p := profile
			entry.Profile = &p
		}
		entries = append(entries, entry)
	}

	response.Success(c, gin.H{"downline": entries})
}

// GetMLMCenters 获取当前用户的业务中心列表
func (h *Handler) GetMLMCenters(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	centers, err := h.BinaryTreeService.CentersForUser(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取业务中心失败", err)
		return
	}

	response.Success(c, gin.H{"centers": centers})
}

// GetMLMBonuses 获取当前用户的奖金记录
func (h *Handler) GetMLMBonuses(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

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

// GetMLMGenerationPreview 按世代预览当前用户的世代奖金
func (h *Handler) GetMLMGenerationPreview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	period := strings.TrimSpace(c.Query("period"))
	preview, err := h.GenerationBonusService.CalculateForUser(userID, period)
	if err != nil {
		respondError(c, response.CodeInternal, "计算世代奖金失败", err)
		return
	}

	response.Success(c, gin.H{"generations": preview})
}

// GetMLMBinaryPreview 预览当前用户各业务中心的双轨奖金
func (h *Handler) GetMLMBinaryPreview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	centers, err := h.BinaryBonusService.Calculate(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "计算双轨奖金失败", err)
		return
	}

	response.Success(c, gin.H{"centers": centers})
}

// GetMLMRankHistory 获取当前用户的等级晋升历史
func (h *Handler) GetMLMRankHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	profile, err := h.ProfileRepo.GetByUserID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "获取档案失败", err)
		return
	}
	if profile == nil {
		respondError(c, response.CodeNotFound, "档案不存在", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	history, total, err := h.RankPromotionService.RankHistory(profile.ID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取晋升历史失败", err)
		return
	}

	response.SuccessWithPage(c, history, buildPagination(page, pageSize, total))
}
