package service

import (
	"fmt"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GenerationBatchResult 世代奖金批次结果
type GenerationBatchResult struct {
	Period      string       `json:"period"`
	SourceCount int          `json:"source_count"`
	PaidCount   int          `json:"paid_count"`
	TotalAmount models.Money `json:"total_amount"`
}

// GenerationBonusService 世代奖金服务
//
// 以已入账的双轨奖金为基数，沿保荐链向上最多发放 maxDepth 代，
// 比例由 (上级级别, 代数) 矩阵决定。参考号 generation:{bonusID}:{ancestorID}
// 保证批次可重跑且每对来源不重复发放。
type GenerationBonusService struct {
	bonusRepo     repository.BonusRepository
	hierarchyRepo repository.HierarchyRepository
	profileRepo   repository.MLMProfileRepository
	matrixRepo    repository.GenerationMatrixRepository
	walletSvc     *WalletService
	maxDepth      int
	now           func() time.Time
}

// NewGenerationBonusService 创建世代奖金服务
func NewGenerationBonusService(
	bonusRepo repository.BonusRepository,
	hierarchyRepo repository.HierarchyRepository,
	profileRepo repository.MLMProfileRepository,
	matrixRepo repository.GenerationMatrixRepository,
	walletSvc *WalletService,
	maxDepth int,
) *GenerationBonusService {
	if maxDepth <= 0 {
		maxDepth = constants.GenerationMaxDepth
	}
	return &GenerationBonusService{
		bonusRepo:     bonusRepo,
		hierarchyRepo: hierarchyRepo,
		profileRepo:   profileRepo,
		matrixRepo:    matrixRepo,
		walletSvc:     walletSvc,
		maxDepth:      maxDepth,
		now:           time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *GenerationBonusService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CalculateAndApply 结算指定周期的世代奖金
//
// 快照截至调用时刻已存在的双轨奖金记录，批次执行期间新产生的记录
// 留待下次批次处理。period 为空时取当前自然月。
func (s *GenerationBonusService) CalculateAndApply(period string) (*GenerationBatchResult, error) {
	now := s.now()
	if period == "" {
		period = periodKey(now)
	}

	snapshotMaxID, err := s.bonusRepo.MaxID()
	if err != nil {
		return nil, err
	}
	sources, err := s.bonusRepo.ListPaidByTypeCreatedBefore(constants.BonusTypeBinary, snapshotMaxID+1)
	if err != nil {
		return nil, err
	}

	result := &GenerationBatchResult{Period: period, TotalAmount: models.ZeroMoney()}
	total := decimal.Zero

	for _, source := range sources {
		if source.CalculationPeriod != period {
			continue
		}
		result.SourceCount++

		ancestors, err := s.hierarchyRepo.ListAncestors(source.UserID)
		if err != nil {
			return nil, err
		}
		for _, edge := range ancestors {
			if edge.Level > s.maxDepth {
				break
			}
			amount, err := s.payForAncestor(&source, edge.AncestorID, edge.Level, period, now)
			if err != nil {
				return nil, err
			}
			if amount != nil {
				result.PaidCount++
				total = total.Add(amount.Decimal)
			}
		}
	}

	result.TotalAmount = models.NewMoneyFromDecimal(total)
	logger.Infow("mlm_generation_batch_done",
		"period", period,
		"source_count", result.SourceCount,
		"paid_count", result.PaidCount,
		"total_amount", result.TotalAmount.String(),
	)
	return result, nil
}

// CalculateForUser 测算用户在指定周期按代数应得的世代奖金（不落库）
func (s *GenerationBonusService) CalculateForUser(userID uint, period string) (map[int]models.Money, error) {
	if period == "" {
		period = periodKey(s.now())
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	descendants, err := s.hierarchyRepo.ListDescendantsUpToLevel(userID, s.maxDepth)
	if err != nil {
		return nil, err
	}

	preview := make(map[int]models.Money)
	for _, edge := range descendants {
		entry, err := s.matrixRepo.Get(profile.CurrentRank, edge.Level)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		bonuses, err := s.bonusRepo.ListByUserAndPeriod(edge.DescendantID, constants.BonusTypeBinary, period)
		if err != nil {
			return nil, err
		}
		sum := preview[edge.Level].Decimal
		for _, b := range bonuses {
			if !b.IsPaid {
				continue
			}
			sum = sum.Add(b.Amount.Decimal.Mul(entry.BonusPercentage.Decimal).Div(decimal.NewFromInt(100)).RoundBank(2))
		}
		preview[edge.Level] = models.NewMoneyFromDecimal(sum)
	}
	return preview, nil
}

// payForAncestor 为单个上级结算单笔来源的世代奖金，未发放时返回 nil
func (s *GenerationBonusService) payForAncestor(source *models.Bonus, ancestorID uint, generation int, period string, now time.Time) (*models.Money, error) {
	ancestorProfile, err := s.profileRepo.GetByUserID(ancestorID)
	if err != nil {
		return nil, err
	}
	if ancestorProfile == nil {
		return nil, nil
	}
	entry, err := s.matrixRepo.Get(ancestorProfile.CurrentRank, generation)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	amount := source.Amount.Decimal.Mul(entry.BonusPercentage.Decimal).Div(decimal.NewFromInt(100)).RoundBank(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	reference := buildGenerationBonusReference(source.ID, ancestorID)
	existing, err := s.bonusRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	err = s.bonusRepo.Transaction(func(tx *gorm.DB) error {
		bonus := &models.Bonus{
			UserID:            ancestorID,
			BonusType:         constants.BonusTypeGeneration,
			Amount:            models.NewMoneyFromDecimal(amount),
			Currency:          constants.SiteCurrencyDefault,
			CalculationPeriod: period,
			Reference:         reference,
			IsPaid:            true,
			PaidAt:            &now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.bonusRepo.WithTx(tx).Create(bonus); err != nil {
			return err
		}
		return s.walletSvc.TransferFromCompanyInTx(tx, ancestorID,
			models.NewMoneyFromDecimal(amount),
			constants.WalletTxnTypeGenerationBonus, reference, "世代奖金")
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil
		}
		return nil, err
	}

	logger.Infow("mlm_generation_bonus_paid",
		"user_id", ancestorID,
		"source_bonus_id", source.ID,
		"generation", generation,
		"amount", models.NewMoneyFromDecimal(amount).String(),
		"period", period,
	)
	paid := models.NewMoneyFromDecimal(amount)
	return &paid, nil
}

func buildGenerationBonusReference(bonusID, ancestorID uint) string {
	return fmt.Sprintf("generation:%d:%d", bonusID, ancestorID)
}
