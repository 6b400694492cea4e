package models

import "time"

// HierarchyEdge 推荐层级闭包表（ancestor 到 descendant 的一条边，level 为代数距离）
type HierarchyEdge struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                           // 主键
	AncestorID   uint      `gorm:"not null;uniqueIndex:idx_hierarchy_pair;index" json:"ancestor_id"`   // 上级用户ID
	DescendantID uint      `gorm:"not null;uniqueIndex:idx_hierarchy_pair;index" json:"descendant_id"` // 下级用户ID
	Level        int       `gorm:"not null;index" json:"level"`                                    // 代数距离（直推为 1）
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (HierarchyEdge) TableName() string {
	return "user_hierarchy"
}
