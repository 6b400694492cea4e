package models

import "time"

// GenerationBonusMatrix 世代奖金比例矩阵（等级 × 代数 → 百分比）
type GenerationBonusMatrix struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                           // 主键
	Rank            string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_matrix_rank_generation" json:"rank"` // 等级
	Generation      int       `gorm:"not null;uniqueIndex:idx_matrix_rank_generation" json:"generation"`            // 代数（1-7）
	BonusPercentage Money     `gorm:"type:decimal(20,2);not null;default:0" json:"bonus_percentage"`  // 奖金比例（百分数）
	CreatedAt       time.Time `json:"created_at"`                                                     // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                                     // 更新时间
}

// TableName 指定表名
func (GenerationBonusMatrix) TableName() string {
	return "generation_bonus_matrix"
}
