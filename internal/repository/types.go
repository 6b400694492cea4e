package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// BonusListFilter 查询奖金记录列表的过滤条件
type BonusListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	BonusType   string
	Period      string
	OnlyPaid    bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TransactionListFilter 查询业务交易列表的过滤条件
type TransactionListFilter struct {
	Page        int
	PageSize    int
	BuyerID     uint
	SellerID    uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WalletAccountListFilter 查询钱包账户列表的过滤条件
type WalletAccountListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}

// WalletTransactionListFilter 查询钱包流水列表的过滤条件
type WalletTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// RankHistoryListFilter 查询等级晋升历史的过滤条件
type RankHistoryListFilter struct {
	Page      int
	PageSize  int
	ProfileID uint
}
