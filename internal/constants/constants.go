package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 合同类型常量
const (
	ContractTypeClient      = "client"
	ContractTypeDistributor = "distributor"
)

// 等级常量（按晋升顺序排列）
const (
	RankOneCarat   = "1 CARAT"
	RankTwoCarat   = "2 CARAT"
	RankThreeCarat = "3 CARAT"
	RankCrystal    = "CRYSTAL"
	RankRubin      = "RUBIN"
	RankSapphire   = "SAPPHIRE"
)

// 俱乐部常量
const (
	ClubPremier = "PREMIER"
	ClubDiamond = "DIAMOND"
	ClubGold    = "GOLD"
	ClubCrystal = "CRYSTAL"
)

// 奖金类型常量
const (
	BonusTypeSponsor    = "SPONSOR"
	BonusTypeGeneration = "GENERATION"
	BonusTypeBinary     = "BINARY"
	BonusTypeRank       = "RANK"
)

// 双轨树位置常量
const (
	BinaryPositionLeft  = "left"
	BinaryPositionRight = "right"
)

// 业务中心数量上限（每个经销商最多开四个中心）
const MaxBusinessCenters = 4

// 交易类型常量
const (
	TransactionTypePurchase      = "purchase"
	TransactionTypeRetailSale    = "retail_sale"
	TransactionTypeNetworkSale   = "network_sale"
	TransactionTypeBonusTransfer = "bonus_transfer"
)

// 交易状态常量
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// 活跃度类型常量
const (
	ActivityTypePersonalPurchase = "personal_purchase"
	ActivityTypeRetailSale       = "retail_sale"
)

// 钱包交易类型常量
const (
	WalletTxnTypePurchaseDebit   = "purchase_debit"
	WalletTxnTypeSaleCredit      = "sale_credit"
	WalletTxnTypeSponsorBonus    = "sponsor_bonus"
	WalletTxnTypeGenerationBonus = "generation_bonus"
	WalletTxnTypeBinaryBonus     = "binary_bonus"
	WalletTxnTypeAdminAdjust     = "admin_adjust"
)

// 钱包交易方向常量
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// 奖金发放步骤常量（编排顺序固定）
const (
	MLMStepSponsor    = "sponsor"
	MLMStepGeneration = "generation"
	MLMStepBinary     = "binary"
	MLMStepRank       = "rank"
	MLMStepClub       = "club"
)

// 队列常量
const (
	QueueDefault        = "default"
	TaskBonusRetry      = "mlm:bonus_retry"
	TaskPlacementCron   = "mlm:placement_cron"
	TaskGenerationBatch = "mlm:generation_batch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "aimlm"
)

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)

// 世代奖金最大代数
const GenerationMaxDepth = 7

// 晋升所需活跃直推线数量
const ActiveLinesRequired = 3
