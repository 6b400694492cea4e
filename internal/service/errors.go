package service

import "errors"

// 用户与认证相关错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSponsorNotFound    = errors.New("sponsor not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidDisplayName = errors.New("display name required")
	ErrWeakPassword       = errors.New("password too weak")
)

// 商品相关错误
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product inactive")
	ErrProductSlugUsed     = errors.New("product slug already used")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrCartItemInvalid     = errors.New("cart item invalid")
)

// 钱包相关错误
var (
	ErrWalletAccountNotFound         = errors.New("wallet account not found")
	ErrWalletInvalidAmount           = errors.New("wallet amount invalid")
	ErrWalletInsufficientBalance     = errors.New("wallet balance insufficient")
	ErrWalletAccountCreateFailed     = errors.New("wallet account create failed")
	ErrWalletAccountUpdateFailed     = errors.New("wallet account update failed")
	ErrWalletTransactionCreateFailed = errors.New("wallet transaction create failed")
	ErrCompanyAccountNotConfigured   = errors.New("company account not configured")
)

// 网络体系相关错误
var (
	ErrProfileNotFound      = errors.New("mlm profile not found")
	ErrProfileExists        = errors.New("mlm profile already exists")
	ErrHierarchySelfSponsor = errors.New("user cannot sponsor himself")
	ErrCenterNotFound       = errors.New("business center not found")
	ErrCenterLimitReached   = errors.New("business center limit reached")
	ErrRankUnknown          = errors.New("unknown rank")
)

// 交易相关错误
var (
	ErrTransactionCreateFailed = errors.New("transaction create failed")
	ErrBonusCreateFailed       = errors.New("bonus create failed")
	ErrSaleToSelf              = errors.New("seller and buyer must differ")
)
