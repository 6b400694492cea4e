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

// CenterBonus 单个业务中心的双轨奖金测算
type CenterBonus struct {
	CenterID    uint         `json:"center_id"`
	LeftVolume  models.Money `json:"left_volume"`
	RightVolume models.Money `json:"right_volume"`
	WeakLeg     models.Money `json:"weak_leg"`
	Amount      models.Money `json:"amount"`
}

// BinaryBonusService 双轨奖金服务
//
// 每个业务中心按弱区业绩 min(left, right) 的固定比例计奖，
// 同一中心同一周期只发一次，参考号 binary:{centerID}:{period}。
type BinaryBonusService struct {
	bonusRepo   repository.BonusRepository
	centerRepo  repository.BusinessCenterRepository
	profileRepo repository.MLMProfileRepository
	walletSvc   *WalletService
	percent     decimal.Decimal
	now         func() time.Time
}

// NewBinaryBonusService 创建双轨奖金服务
func NewBinaryBonusService(
	bonusRepo repository.BonusRepository,
	centerRepo repository.BusinessCenterRepository,
	profileRepo repository.MLMProfileRepository,
	walletSvc *WalletService,
	percent float64,
) *BinaryBonusService {
	if percent <= 0 {
		percent = 10
	}
	return &BinaryBonusService{
		bonusRepo:   bonusRepo,
		centerRepo:  centerRepo,
		profileRepo: profileRepo,
		walletSvc:   walletSvc,
		percent:     decimal.NewFromFloat(percent),
		now:         time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *BinaryBonusService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Calculate 测算用户全部业务中心的双轨奖金（不落库）
func (s *BinaryBonusService) Calculate(userID uint) ([]CenterBonus, error) {
	centers, err := s.centersForUser(userID)
	if err != nil {
		return nil, err
	}
	result := make([]CenterBonus, 0, len(centers))
	for _, center := range centers {
		weak := decimal.Min(center.LeftVolume.Decimal, center.RightVolume.Decimal)
		amount := weak.Mul(s.percent).Div(decimal.NewFromInt(100)).RoundBank(2)
		result = append(result, CenterBonus{
			CenterID:    center.ID,
			LeftVolume:  center.LeftVolume,
			RightVolume: center.RightVolume,
			WeakLeg:     models.NewMoneyFromDecimal(weak),
			Amount:      models.NewMoneyFromDecimal(amount),
		})
	}
	return result, nil
}

// ProcessBinaryImpact 为用户各业务中心结算当期双轨奖金并入账
func (s *BinaryBonusService) ProcessBinaryImpact(userID uint) ([]CenterBonus, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	centers, err := s.centersForUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	period := periodKey(now)
	paid := make([]CenterBonus, 0, len(centers))

	for _, center := range centers {
		weak := decimal.Min(center.LeftVolume.Decimal, center.RightVolume.Decimal)
		amount := weak.Mul(s.percent).Div(decimal.NewFromInt(100)).RoundBank(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		reference := buildBinaryBonusReference(center.ID, period)

		existing, err := s.bonusRepo.GetByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		err = s.bonusRepo.Transaction(func(tx *gorm.DB) error {
			bonus := &models.Bonus{
				UserID:            userID,
				BonusType:         constants.BonusTypeBinary,
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
			return s.walletSvc.TransferFromCompanyInTx(tx, userID,
				models.NewMoneyFromDecimal(amount),
				constants.WalletTxnTypeBinaryBonus, reference, "双轨奖金")
		})
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}

		paid = append(paid, CenterBonus{
			CenterID:    center.ID,
			LeftVolume:  center.LeftVolume,
			RightVolume: center.RightVolume,
			WeakLeg:     models.NewMoneyFromDecimal(weak),
			Amount:      models.NewMoneyFromDecimal(amount),
		})
		logger.Infow("mlm_binary_bonus_paid",
			"user_id", userID,
			"center_id", center.ID,
			"amount", models.NewMoneyFromDecimal(amount).String(),
			"period", period,
		)
	}
	return paid, nil
}

func (s *BinaryBonusService) centersForUser(userID uint) ([]models.BusinessCenter, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []models.BusinessCenter{}, nil
	}
	return s.centerRepo.ListByProfileID(profile.ID)
}

func buildBinaryBonusReference(centerID uint, period string) string {
	return fmt.Sprintf("binary:%d:%s", centerID, period)
}
