package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletAccount 钱包账户（每个用户一条，余额变更必须走行锁）
type WalletAccount struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                   // 主键
	UserID    uint           `gorm:"not null;uniqueIndex" json:"user_id"`                    // 用户ID
	Balance   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`   // 余额
	Currency  string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"` // 币种
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// WalletTransaction 钱包流水（reference 唯一，作为资金动作的幂等键）
type WalletTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID        uint      `gorm:"not null;index" json:"user_id"`                               // 用户ID
	Type          string    `gorm:"type:varchar(30);not null;index" json:"type"`                 // 流水类型
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`                  // 方向（in/out）
	Amount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 变动金额（正数）
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"` // 变动前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`  // 变动后余额
	Currency      string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`     // 币种
	Reference     string    `gorm:"type:varchar(100);uniqueIndex" json:"reference"`              // 幂等参考号
	Remark        string    `gorm:"type:varchar(255)" json:"remark"`                             // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
