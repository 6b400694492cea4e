package service

import (
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
)

// BonusRetryEnqueuer 奖金步骤失败后的重试投递接口
type BonusRetryEnqueuer interface {
	EnqueueBonusRetry(buyerID uint, step string) error
}

// MLMService 结算编排服务
//
// 购买成功后按 推荐奖 → 世代奖 → 双轨奖 → 晋级 → 俱乐部 的顺序
// 逐步结算。各步骤相互隔离：单步失败只记录并投递重试，
// 不影响后续步骤，也不向调用方返回错误。
type MLMService struct {
	sponsorSvc    *SponsorBonusService
	generationSvc *GenerationBonusService
	binarySvc     *BinaryBonusService
	rankSvc       *RankPromotionService
	clubSvc       *ClubService
	retryQueue    BonusRetryEnqueuer
	now           func() time.Time
}

// NewMLMService 创建结算编排服务
func NewMLMService(
	sponsorSvc *SponsorBonusService,
	generationSvc *GenerationBonusService,
	binarySvc *BinaryBonusService,
	rankSvc *RankPromotionService,
	clubSvc *ClubService,
	retryQueue BonusRetryEnqueuer,
) *MLMService {
	return &MLMService{
		sponsorSvc:    sponsorSvc,
		generationSvc: generationSvc,
		binarySvc:     binarySvc,
		rankSvc:       rankSvc,
		clubSvc:       clubSvc,
		retryQueue:    retryQueue,
		now:           time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *MLMService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// OnProductPurchase 购买成功后的结算入口
//
// 由购买事务提交后触发。所有步骤均幂等，重复触发不会重复入账。
func (s *MLMService) OnProductPurchase(buyerID uint) {
	if buyerID == 0 {
		return
	}

	s.runStep(buyerID, constants.MLMStepSponsor, func() error {
		_, err := s.sponsorSvc.Distribute(buyerID)
		return err
	})

	s.runStep(buyerID, constants.MLMStepBinary, func() error {
		_, err := s.binarySvc.ProcessBinaryImpact(buyerID)
		return err
	})

	s.runStep(buyerID, constants.MLMStepGeneration, func() error {
		_, err := s.generationSvc.CalculateAndApply(periodKey(s.now()))
		return err
	})

	s.runStep(buyerID, constants.MLMStepRank, func() error {
		_, _, err := s.rankSvc.CheckAndPromote(buyerID)
		return err
	})

	s.runStep(buyerID, constants.MLMStepClub, func() error {
		_, _, err := s.clubSvc.CheckAndUpdateUserClub(buyerID)
		return err
	})
}

// RetryStep 重试单个结算步骤（由队列消费者调用）
func (s *MLMService) RetryStep(buyerID uint, step string) error {
	switch step {
	case constants.MLMStepSponsor:
		_, err := s.sponsorSvc.Distribute(buyerID)
		return err
	case constants.MLMStepBinary:
		_, err := s.binarySvc.ProcessBinaryImpact(buyerID)
		return err
	case constants.MLMStepGeneration:
		_, err := s.generationSvc.CalculateAndApply(periodKey(s.now()))
		return err
	case constants.MLMStepRank:
		_, _, err := s.rankSvc.CheckAndPromote(buyerID)
		return err
	case constants.MLMStepClub:
		_, _, err := s.clubSvc.CheckAndUpdateUserClub(buyerID)
		return err
	default:
		logger.Warnw("mlm_retry_unknown_step", "buyer_id", buyerID, "step", step)
		return nil
	}
}

func (s *MLMService) runStep(buyerID uint, step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("mlm_step_panic", "buyer_id", buyerID, "step", step, "panic", r)
			s.enqueueRetry(buyerID, step)
		}
	}()
	if err := fn(); err != nil {
		logger.Warnw("mlm_step_failed", "buyer_id", buyerID, "step", step, "error", err)
		s.enqueueRetry(buyerID, step)
	}
}

func (s *MLMService) enqueueRetry(buyerID uint, step string) {
	if s.retryQueue == nil {
		return
	}
	if err := s.retryQueue.EnqueueBonusRetry(buyerID, step); err != nil {
		logger.Errorw("mlm_retry_enqueue_failed", "buyer_id", buyerID, "step", step, "error", err)
	}
}
