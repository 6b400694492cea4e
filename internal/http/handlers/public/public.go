package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/cache"
	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/http/response"
	"github.com/XTeam-Pro/AIMLM/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"currency":       constants.SiteCurrencyDefault,
		"contract_types": []string{constants.ContractTypeClient, constants.ContractTypeDistributor},
		"ranks": []string{
			constants.RankOneCarat,
			constants.RankTwoCarat,
			constants.RankThreeCarat,
			constants.RankCrystal,
			constants.RankRubin,
			constants.RankSapphire,
		},
		"clubs": []string{
			constants.ClubPremier,
			constants.ClubDiamond,
			constants.ClubGold,
			constants.ClubCrystal,
		},
	}
	if h.Config != nil {
		data["mlm"] = map[string]interface{}{
			"sponsor_bonus_percent": h.Config.MLM.SponsorBonusPercent,
			"binary_bonus_percent":  h.Config.MLM.BinaryBonusPercent,
			"generation_max_depth":  h.Config.MLM.GenerationMaxDepth,
		}
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取商品列表失败", err)
		return
	}

	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// GetProductBySlug 根据 slug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "商品不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取商品失败", err)
		return
	}

	response.Success(c, product)
}
