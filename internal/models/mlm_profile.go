package models

import (
	"time"

	"gorm.io/gorm"
)

// MLMProfile 用户网络体系档案（每个用户最多一条）
type MLMProfile struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                            // 主键
	UserID             uint           `gorm:"not null;uniqueIndex" json:"user_id"`                             // 用户ID
	ContractType       string         `gorm:"type:varchar(20);not null;default:'client'" json:"contract_type"` // 合同类型（client/distributor）
	CurrentRank        string         `gorm:"type:varchar(20);index" json:"current_rank"`                      // 当前等级
	CurrentClub        string         `gorm:"type:varchar(20)" json:"current_club"`                            // 当前俱乐部
	PersonalVolume     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"personal_volume"`    // 个人业绩（PV）
	GroupVolume        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"group_volume"`       // 团队业绩（PV）
	AccumulatedVolume  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"accumulated_volume"` // 累计业绩（PV）
	SponsorID          *uint          `gorm:"index" json:"sponsor_id"`                                         // 推荐人用户ID
	PlacementSponsorID *uint          `gorm:"index" json:"placement_sponsor_id"`                               // 安置推荐人用户ID
	MentorID           *uint          `json:"mentor_id"`                                                       // 导师用户ID
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (MLMProfile) TableName() string {
	return "user_mlm_profiles"
}
