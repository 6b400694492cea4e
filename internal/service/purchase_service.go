package service

import (
	"fmt"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseResult 购买/销售结果
type PurchaseResult struct {
	TransactionID uint         `json:"transaction_id"`
	CashAmount    models.Money `json:"cash_amount"`
	PVAmount      models.Money `json:"pv_amount"`
}

// PurchaseService 购买服务
//
// 先完成校验，再在单个数据库事务内扣款、分账、记录交易流水并
// 累计业绩；事务提交后才触发 MLM 结算。任何校验失败都发生在
// 余额变更之前。
type PurchaseService struct {
	productRepo     repository.ProductRepository
	cartRepo        repository.CartRepository
	transactionRepo repository.TransactionRepository
	profileRepo     repository.MLMProfileRepository
	hierarchyRepo   repository.HierarchyRepository
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	walletSvc       *WalletService
	hierarchySvc    *HierarchyService
	binarySvc       *BinaryTreeService
	mlmSvc          *MLMService
	now             func() time.Time
}

// NewPurchaseService 创建购买服务
func NewPurchaseService(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	transactionRepo repository.TransactionRepository,
	profileRepo repository.MLMProfileRepository,
	hierarchyRepo repository.HierarchyRepository,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	walletSvc *WalletService,
	hierarchySvc *HierarchyService,
	binarySvc *BinaryTreeService,
	mlmSvc *MLMService,
) *PurchaseService {
	return &PurchaseService{
		productRepo:     productRepo,
		cartRepo:        cartRepo,
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		hierarchyRepo:   hierarchyRepo,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		walletSvc:       walletSvc,
		hierarchySvc:    hierarchySvc,
		binarySvc:       binarySvc,
		mlmSvc:          mlmSvc,
		now:             time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *PurchaseService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ProcessPurchase 处理向公司直购
//
// 买家全额付款给公司账户。事务提交成功后触发奖金结算，
// 结算失败不回滚购买本身。
func (s *PurchaseService) ProcessPurchase(buyerID, productID uint) (*PurchaseResult, error) {
	product, err := s.validateProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := s.validateBuyer(buyerID, product.PriceAmount); err != nil {
		return nil, err
	}
	companyID, err := s.walletSvc.CompanyUserID()
	if err != nil {
		return nil, err
	}

	reference := buildPurchaseReference()
	now := s.now()
	var txnID uint

	err = s.walletRepo.Transaction(func(tx *gorm.DB) error {
		if _, _, err := s.walletSvc.DebitInTx(tx, WalletDebitInput{
			UserID:    buyerID,
			Amount:    product.PriceAmount,
			TxnType:   constants.WalletTxnTypePurchaseDebit,
			Reference: reference + ":debit",
			Remark:    "购买商品 " + product.Name,
		}); err != nil {
			return err
		}
		if _, _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
			UserID:    companyID,
			Amount:    product.PriceAmount,
			TxnType:   constants.WalletTxnTypeSaleCredit,
			Reference: reference + ":company",
			Remark:    "公司直购收入",
		}); err != nil {
			return err
		}

		txn := &models.Transaction{
			BuyerID:    buyerID,
			ProductID:  &product.ID,
			CashAmount: product.PriceAmount,
			PVAmount:   product.PVValue,
			Type:       constants.TransactionTypePurchase,
			Status:     constants.TransactionStatusCompleted,
			AdditionalInfo: models.JSON{
				"reference":     reference,
				"company_share": product.PriceAmount.String(),
			},
			CreatedAt: now,
		}
		if err := s.transactionRepo.WithTx(tx).Create(txn); err != nil {
			return err
		}
		txnID = txn.ID

		if err := s.applyVolumesTx(tx, buyerID, product.PVValue, constants.ActivityTypePersonalPurchase, now); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteByUserAndProduct(buyerID, product.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("purchase_completed",
		"buyer_id", buyerID,
		"product_id", product.ID,
		"cash_amount", product.PriceAmount.String(),
		"pv_amount", product.PVValue.String(),
	)
	s.mlmSvc.OnProductPurchase(buyerID)
	return &PurchaseResult{TransactionID: txnID, CashAmount: product.PriceAmount, PVAmount: product.PVValue}, nil
}

// ProcessSale 处理经销商销售
//
// 买家付款后卖家得单一分成：卖家是买家保荐人时得 50%，
// 第三方卖家得 30%，余额（含尾差）归公司。业绩记在卖家名下。
func (s *PurchaseService) ProcessSale(sellerID, buyerID, productID uint) (*PurchaseResult, error) {
	if sellerID == buyerID {
		return nil, ErrSaleToSelf
	}
	product, err := s.validateProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := s.validateBuyer(buyerID, product.PriceAmount); err != nil {
		return nil, err
	}
	seller, err := s.userRepo.GetByID(sellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrUserNotFound
	}
	companyID, err := s.walletSvc.CompanyUserID()
	if err != nil {
		return nil, err
	}

	sponsorID := uint(0)
	if profile, err := s.profileRepo.GetByUserID(buyerID); err != nil {
		return nil, err
	} else if profile != nil && profile.SponsorID != nil {
		sponsorID = *profile.SponsorID
	}
	isSponsorSale := sponsorID != 0 && sellerID == sponsorID

	price := product.PriceAmount.Decimal
	shareRate := decimal.NewFromInt(30)
	txnType := constants.TransactionTypeRetailSale
	if isSponsorSale {
		shareRate = decimal.NewFromInt(50)
		txnType = constants.TransactionTypeNetworkSale
	}
	sellerShare := price.Mul(shareRate).Div(decimal.NewFromInt(100)).RoundBank(2)
	// 公司自营卖家不分成，尾差由公司吸收
	if sellerID == companyID {
		sellerShare = decimal.Zero
	}
	companyShare := price.Sub(sellerShare)

	reference := buildPurchaseReference()
	now := s.now()
	var txnID uint

	err = s.walletRepo.Transaction(func(tx *gorm.DB) error {
		if _, _, err := s.walletSvc.DebitInTx(tx, WalletDebitInput{
			UserID:    buyerID,
			Amount:    product.PriceAmount,
			TxnType:   constants.WalletTxnTypePurchaseDebit,
			Reference: reference + ":debit",
			Remark:    "购买商品 " + product.Name,
		}); err != nil {
			return err
		}
		if sellerShare.GreaterThan(decimal.Zero) {
			if _, _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
				UserID:    sellerID,
				Amount:    models.NewMoneyFromDecimal(sellerShare),
				TxnType:   constants.WalletTxnTypeSaleCredit,
				Reference: reference + ":seller",
				Remark:    "销售分成（卖家）",
			}); err != nil {
				return err
			}
		}
		if companyShare.GreaterThan(decimal.Zero) {
			if _, _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
				UserID:    companyID,
				Amount:    models.NewMoneyFromDecimal(companyShare),
				TxnType:   constants.WalletTxnTypeSaleCredit,
				Reference: reference + ":company",
				Remark:    "销售分成（公司）",
			}); err != nil {
				return err
			}
		}

		txn := &models.Transaction{
			BuyerID:    buyerID,
			SellerID:   &sellerID,
			ProductID:  &product.ID,
			CashAmount: product.PriceAmount,
			PVAmount:   product.PVValue,
			Type:       txnType,
			Status:     constants.TransactionStatusCompleted,
			AdditionalInfo: models.JSON{
				"reference":     reference,
				"seller_share":  models.NewMoneyFromDecimal(sellerShare).String(),
				"company_share": models.NewMoneyFromDecimal(companyShare).String(),
			},
			CreatedAt: now,
		}
		if err := s.transactionRepo.WithTx(tx).Create(txn); err != nil {
			return err
		}
		txnID = txn.ID

		// 销售业绩记在卖家名下
		if err := s.applyVolumesTx(tx, sellerID, product.PVValue, constants.ActivityTypeRetailSale, now); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteByUserAndProduct(buyerID, product.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("sale_completed",
		"buyer_id", buyerID,
		"seller_id", sellerID,
		"product_id", product.ID,
		"type", txnType,
		"cash_amount", product.PriceAmount.String(),
	)
	s.mlmSvc.OnProductPurchase(buyerID)
	return &PurchaseResult{TransactionID: txnID, CashAmount: product.PriceAmount, PVAmount: product.PVValue}, nil
}

// validateProduct 校验商品存在且在售
func (s *PurchaseService) validateProduct(productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}
	return product, nil
}

// validateBuyer 校验买家存在、可用且余额充足
func (s *PurchaseService) validateBuyer(buyerID uint, price models.Money) error {
	user, err := s.userRepo.GetByID(buyerID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Status != constants.UserStatusActive {
		return ErrUserDisabled
	}
	account, err := s.walletSvc.GetAccount(buyerID)
	if err != nil {
		return err
	}
	if account.Balance.Decimal.LessThan(price.Decimal) {
		return ErrWalletInsufficientBalance
	}
	return nil
}

// applyVolumesTx 在事务内为受益人累计个人/团队业绩、当期活跃度和双轨业绩。
// 直购时受益人是买家，经销商销售时是卖家。
func (s *PurchaseService) applyVolumesTx(tx *gorm.DB, userID uint, pv models.Money, activityType string, now time.Time) error {
	if pv.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	profileRepo := s.profileRepo.WithTx(tx)
	profile, err := profileRepo.GetByUserIDForUpdate(userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	profile.PersonalVolume = models.NewMoneyFromDecimal(profile.PersonalVolume.Decimal.Add(pv.Decimal))
	profile.AccumulatedVolume = models.NewMoneyFromDecimal(profile.AccumulatedVolume.Decimal.Add(pv.Decimal))
	if err := profileRepo.Update(profile); err != nil {
		return err
	}

	if err := s.hierarchySvc.RecordActivityTx(tx, profile.ID, pv, activityType, now); err != nil {
		return err
	}

	// 团队业绩沿保荐链向上累计
	ancestors, err := s.hierarchyRepo.WithTx(tx).ListAncestors(userID)
	if err != nil {
		return err
	}
	for _, edge := range ancestors {
		ancestorProfile, err := profileRepo.GetByUserIDForUpdate(edge.AncestorID)
		if err != nil {
			return err
		}
		if ancestorProfile == nil {
			continue
		}
		ancestorProfile.GroupVolume = models.NewMoneyFromDecimal(ancestorProfile.GroupVolume.Decimal.Add(pv.Decimal))
		if err := profileRepo.Update(ancestorProfile); err != nil {
			return err
		}
	}

	return s.binarySvc.ApplyVolumeTx(tx, userID, pv)
}

func buildPurchaseReference() string {
	return fmt.Sprintf("purchase:%s", uuid.NewString())
}
