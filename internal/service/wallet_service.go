package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService 钱包服务
//
// 所有余额变更都在行锁内完成，并以唯一参考号写入流水。
// 公司账户由配置指定的公司用户持有，奖金发放都从它出账。
type WalletService struct {
	walletRepo   repository.WalletRepository
	userRepo     repository.UserRepository
	companyEmail string
	now          func() time.Time
}

// WalletAdjustInput 管理员余额调整输入
type WalletAdjustInput struct {
	UserID   uint
	Delta    models.Money
	Currency string
	Remark   string
}

// WalletCreditInput 事务内入账输入
type WalletCreditInput struct {
	UserID    uint
	Amount    models.Money
	Currency  string
	TxnType   string
	Reference string
	Remark    string
}

// WalletDebitInput 事务内出账输入
type WalletDebitInput struct {
	UserID    uint
	Amount    models.Money
	Currency  string
	TxnType   string
	Reference string
	Remark    string
}

// WalletTransferInput 事务内转账输入（from 出账、to 入账，同一参考号派生两条流水）
type WalletTransferInput struct {
	FromUserID uint
	ToUserID   uint
	Amount     models.Money
	Currency   string
	TxnType    string
	Reference  string
	Remark     string
}

// NewWalletService 创建钱包服务
func NewWalletService(
	walletRepo repository.WalletRepository,
	userRepo repository.UserRepository,
	companyEmail string,
) *WalletService {
	return &WalletService{
		walletRepo:   walletRepo,
		userRepo:     userRepo,
		companyEmail: strings.TrimSpace(companyEmail),
		now:          time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *WalletService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// GetAccount 获取钱包账户（不存在时自动创建）
func (s *WalletService) GetAccount(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	return s.getOrCreateAccount(userID)
}

// ListTransactions 查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// GetBalancesByUserIDs 批量查询用户余额
func (s *WalletService) GetBalancesByUserIDs(userIDs []uint) (map[uint]models.Money, error) {
	result := make(map[uint]models.Money, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	accounts, err := s.walletRepo.GetAccountsByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		result[account.UserID] = account.Balance
	}
	return result, nil
}

// CompanyUserID 解析公司账户用户ID
func (s *WalletService) CompanyUserID() (uint, error) {
	if s.companyEmail == "" {
		return 0, ErrCompanyAccountNotConfigured
	}
	user, err := s.userRepo.GetByEmail(s.companyEmail)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrCompanyAccountNotConfigured
	}
	return user.ID, nil
}

// AdminAdjustBalance 管理员增减用户余额
func (s *WalletService) AdminAdjustBalance(input WalletAdjustInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	delta := input.Delta.Decimal.RoundBank(2)
	if delta.IsZero() {
		return nil, nil, ErrWalletInvalidAmount
	}
	reference := buildWalletReference("admin_adjust", input.UserID, s.now())
	remark := cleanWalletRemark(input.Remark, "管理员调整余额")
	currency := normalizeWalletCurrency(input.Currency)
	return s.changeBalance(input.UserID, delta, constants.WalletTxnTypeAdminAdjust, reference, remark, currency)
}

// CreditInTx 在事务内执行钱包入账并写入唯一参考号流水
func (s *WalletService) CreditInTx(tx *gorm.DB, input WalletCreditInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if tx == nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.RoundBank(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	now := s.now()
	repo := s.walletRepo.WithTx(tx)

	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		account, accountErr := repo.GetAccountByUserID(input.UserID)
		if accountErr != nil {
			return nil, nil, accountErr
		}
		return account, exists, nil
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	before := account.Balance.Decimal.RoundBank(2)
	after := before.Add(amount).RoundBank(2)
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}

	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		Type:          strings.TrimSpace(input.TxnType),
		Direction:     constants.WalletTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		Remark:        cleanWalletRemark(input.Remark, "钱包入账"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	return account, txn, nil
}

// DebitInTx 在事务内执行钱包出账，余额不足时返回错误且不落任何变更
func (s *WalletService) DebitInTx(tx *gorm.DB, input WalletDebitInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if tx == nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.RoundBank(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	now := s.now()
	repo := s.walletRepo.WithTx(tx)

	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		account, accountErr := repo.GetAccountByUserID(input.UserID)
		if accountErr != nil {
			return nil, nil, accountErr
		}
		return account, exists, nil
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	before := account.Balance.Decimal.RoundBank(2)
	after := before.Sub(amount).RoundBank(2)
	if after.LessThan(decimal.Zero) {
		return nil, nil, ErrWalletInsufficientBalance
	}
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}

	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		Type:          strings.TrimSpace(input.TxnType),
		Direction:     constants.WalletTxnDirectionOut,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		Remark:        cleanWalletRemark(input.Remark, "钱包出账"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	return account, txn, nil
}

// TransferInTx 在事务内执行转账：先从转出方出账，再给转入方入账。
// 两条流水共享参考号前缀，整体幂等。
func (s *WalletService) TransferInTx(tx *gorm.DB, input WalletTransferInput) error {
	if input.FromUserID == 0 || input.ToUserID == 0 {
		return ErrWalletAccountNotFound
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return ErrWalletTransactionCreateFailed
	}
	if _, _, err := s.DebitInTx(tx, WalletDebitInput{
		UserID:    input.FromUserID,
		Amount:    input.Amount,
		Currency:  input.Currency,
		TxnType:   input.TxnType,
		Reference: reference + ":out",
		Remark:    input.Remark,
	}); err != nil {
		return err
	}
	if _, _, err := s.CreditInTx(tx, WalletCreditInput{
		UserID:    input.ToUserID,
		Amount:    input.Amount,
		Currency:  input.Currency,
		TxnType:   input.TxnType,
		Reference: reference + ":in",
		Remark:    input.Remark,
	}); err != nil {
		return err
	}
	return nil
}

// TransferFromCompanyInTx 在事务内从公司账户向用户转账（奖金发放统一入口）
func (s *WalletService) TransferFromCompanyInTx(tx *gorm.DB, toUserID uint, amount models.Money, txnType, reference, remark string) error {
	companyID, err := s.CompanyUserID()
	if err != nil {
		return err
	}
	return s.TransferInTx(tx, WalletTransferInput{
		FromUserID: companyID,
		ToUserID:   toUserID,
		Amount:     amount,
		TxnType:    txnType,
		Reference:  reference,
		Remark:     remark,
	})
}

func (s *WalletService) changeBalance(userID uint, delta decimal.Decimal, txnType, reference, remark, currency string) (*models.WalletAccount, *models.WalletTransaction, error) {
	var accountResult *models.WalletAccount
	var txnResult *models.WalletTransaction
	if err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.walletRepo.WithTx(tx)
		now := s.now()
		account, err := s.ensureAccountForUpdate(repo, userID, now)
		if err != nil {
			return err
		}

		before := account.Balance.Decimal.RoundBank(2)
		after := before.Add(delta).RoundBank(2)
		if after.LessThan(decimal.Zero) {
			return ErrWalletInsufficientBalance
		}
		direction := constants.WalletTxnDirectionIn
		amount := delta.RoundBank(2)
		if delta.LessThan(decimal.Zero) {
			direction = constants.WalletTxnDirectionOut
			amount = delta.Abs().RoundBank(2)
		}

		account.Balance = models.NewMoneyFromDecimal(after)
		account.UpdatedAt = now
		if err := repo.UpdateAccount(account); err != nil {
			return ErrWalletAccountUpdateFailed
		}

		txn := &models.WalletTransaction{
			UserID:        userID,
			Type:          txnType,
			Direction:     direction,
			Amount:        models.NewMoneyFromDecimal(amount),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Currency:      normalizeWalletCurrency(currency),
			Reference:     strings.TrimSpace(reference),
			Remark:        remark,
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrWalletTransactionCreateFailed
		}

		accountResult = account
		txnResult = txn
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return accountResult, txnResult, nil
}

func (s *WalletService) getOrCreateAccount(userID uint) (*models.WalletAccount, error) {
	account, err := s.walletRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := s.now()
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  normalizeWalletCurrency(""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		created, queryErr := s.walletRepo.GetAccountByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func (s *WalletService) ensureAccountForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  normalizeWalletCurrency(""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		created, queryErr := repo.GetAccountByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func normalizeWalletCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		return constants.SiteCurrencyDefault
	}
	return normalized
}

func cleanWalletRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func buildWalletReference(prefix string, id uint, now time.Time) string {
	normalized := strings.TrimSpace(prefix)
	if normalized == "" {
		normalized = "wallet"
	}
	return fmt.Sprintf("%s:%d:%d", normalized, id, now.UnixNano())
}
