package models

import (
	"time"

	"gorm.io/gorm"
)

// BusinessCenter 双轨树业务中心节点
type BusinessCenter struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                        // 主键
	ProfileID      uint           `gorm:"not null;index" json:"profile_id"`                            // 所属网络档案ID
	CenterNumber   int            `gorm:"not null;default:1" json:"center_number"`                     // 中心编号（1-4）
	ParentCenterID *uint          `gorm:"uniqueIndex:idx_center_parent_position" json:"parent_center_id"` // 父节点中心ID
	Position       string         `gorm:"type:varchar(10);uniqueIndex:idx_center_parent_position" json:"position"` // 挂载位置（left/right）
	LeftVolume     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"left_volume"`    // 左区业绩
	RightVolume    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"right_volume"`   // 右区业绩
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (BusinessCenter) TableName() string {
	return "business_centers"
}
