package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SponsorBonusOutcome 推荐奖金发放结果
type SponsorBonusOutcome string

// 推荐奖金结果常量
const (
	SponsorBonusPaid        SponsorBonusOutcome = "paid"
	SponsorBonusAlreadyPaid SponsorBonusOutcome = "already_paid"
	SponsorBonusNoSponsor   SponsorBonusOutcome = "no_sponsor"
	SponsorBonusNoPurchases SponsorBonusOutcome = "no_purchases"
	SponsorBonusZero        SponsorBonusOutcome = "zero_bonus"
)

// SponsorBonusResult 推荐奖金发放明细
type SponsorBonusResult struct {
	Outcome   SponsorBonusOutcome
	SponsorID uint
	Amount    models.Money
}

// SponsorBonusService 推荐奖金服务
//
// 一次性奖金：推荐人按新人首单 PV 的固定比例获得，
// 同一 (推荐人, 新人) 组合永远只发一次，靠数据库唯一索引兜底。
type SponsorBonusService struct {
	bonusRepo       repository.BonusRepository
	profileRepo     repository.MLMProfileRepository
	transactionRepo repository.TransactionRepository
	walletSvc       *WalletService
	percent         decimal.Decimal
	now             func() time.Time
}

// NewSponsorBonusService 创建推荐奖金服务
func NewSponsorBonusService(
	bonusRepo repository.BonusRepository,
	profileRepo repository.MLMProfileRepository,
	transactionRepo repository.TransactionRepository,
	walletSvc *WalletService,
	percent float64,
) *SponsorBonusService {
	if percent <= 0 {
		percent = 5
	}
	return &SponsorBonusService{
		bonusRepo:       bonusRepo,
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		walletSvc:       walletSvc,
		percent:         decimal.NewFromFloat(percent),
		now:             time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *SponsorBonusService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Distribute 为新人首单向其推荐人发放一次性推荐奖金
func (s *SponsorBonusService) Distribute(buyerID uint) (SponsorBonusResult, error) {
	result := SponsorBonusResult{Outcome: SponsorBonusNoSponsor}
	if buyerID == 0 {
		return result, ErrUserNotFound
	}

	profile, err := s.profileRepo.GetByUserID(buyerID)
	if err != nil {
		return result, err
	}
	if profile == nil || profile.SponsorID == nil || *profile.SponsorID == 0 {
		return result, nil
	}
	sponsorID := *profile.SponsorID
	result.SponsorID = sponsorID

	existing, err := s.bonusRepo.GetSponsorBonus(sponsorID, buyerID)
	if err != nil {
		return result, err
	}
	if existing != nil {
		result.Outcome = SponsorBonusAlreadyPaid
		result.Amount = existing.Amount
		return result, nil
	}

	firstPurchase, err := s.transactionRepo.GetFirstPurchaseByBuyer(buyerID)
	if err != nil {
		return result, err
	}
	if firstPurchase == nil {
		result.Outcome = SponsorBonusNoPurchases
		return result, nil
	}

	amount := firstPurchase.PVAmount.Decimal.
		Mul(s.percent).
		Div(decimal.NewFromInt(100)).
		RoundBank(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		result.Outcome = SponsorBonusZero
		return result, nil
	}

	now := s.now()
	reference := buildSponsorBonusReference(sponsorID, buyerID)
	sourceID := buyerID

	err = s.bonusRepo.Transaction(func(tx *gorm.DB) error {
		bonus := &models.Bonus{
			UserID:            sponsorID,
			SourceUserID:      &sourceID,
			BonusType:         constants.BonusTypeSponsor,
			Amount:            models.NewMoneyFromDecimal(amount),
			Currency:          constants.SiteCurrencyDefault,
			CalculationPeriod: periodKey(now),
			Reference:         reference,
			IsPaid:            true,
			PaidAt:            &now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.bonusRepo.WithTx(tx).Create(bonus); err != nil {
			return err
		}
		return s.walletSvc.TransferFromCompanyInTx(tx, sponsorID,
			models.NewMoneyFromDecimal(amount),
			constants.WalletTxnTypeSponsorBonus, reference, "推荐奖金")
	})
	if err != nil {
		// 并发重复触发时由唯一索引拦截，视作已发放
		if isUniqueViolation(err) {
			result.Outcome = SponsorBonusAlreadyPaid
			return result, nil
		}
		return result, err
	}

	result.Outcome = SponsorBonusPaid
	result.Amount = models.NewMoneyFromDecimal(amount)
	logger.Infow("mlm_sponsor_bonus_paid",
		"sponsor_id", sponsorID,
		"buyer_id", buyerID,
		"amount", result.Amount.String(),
		"reference", reference,
	)
	return result, nil
}

func buildSponsorBonusReference(sponsorID, buyerID uint) string {
	return fmt.Sprintf("sponsor:%d:%d", sponsorID, buyerID)
}

// isUniqueViolation 判断是否唯一索引冲突；
// 驱动未转换为 gorm.ErrDuplicatedKey 时回退到报错文本匹配
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
