package models

import (
	"time"

	"gorm.io/gorm"
)

// Bonus 奖金记录表
//
// Reference 是幂等键：同一笔奖金只会落一条记录。
// (user_id, source_user_id, bonus_type) 上的唯一索引保证同一推荐人
// 对同一新人的推荐奖金只发一次。
type Bonus struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                // 主键
	UserID            uint           `gorm:"not null;index;uniqueIndex:idx_bonus_user_source_type" json:"user_id"` // 受益用户ID
	SourceUserID      *uint          `gorm:"uniqueIndex:idx_bonus_user_source_type" json:"source_user_id"`        // 业绩来源用户ID（推荐奖金必填）
	BonusType         string         `gorm:"type:varchar(20);not null;index;uniqueIndex:idx_bonus_user_source_type" json:"bonus_type"` // 奖金类型
	Amount            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                 // 奖金金额
	Currency          string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`             // 币种
	CalculationPeriod string         `gorm:"type:varchar(10);index" json:"calculation_period"`                    // 计算周期（YYYY-MM）
	Reference         string         `gorm:"type:varchar(100);uniqueIndex" json:"reference"`                      // 幂等参考号
	IsPaid            bool           `gorm:"not null;default:false;index" json:"is_paid"`                         // 是否已入账
	PaidAt            *time.Time     `json:"paid_at"`                                                             // 入账时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt         time.Time      `json:"updated_at"`                                                          // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间
}

// TableName 指定表名
func (Bonus) TableName() string {
	return "bonuses"
}
