package models

import "time"

// UserActivity 用户周期活跃度记录（按自然月累计个人业绩）
type UserActivity struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                            // 主键
	ProfileID      uint      `gorm:"not null;index;uniqueIndex:idx_activity_profile_period" json:"profile_id"` // 网络档案ID
	PeriodStart    time.Time `gorm:"not null;uniqueIndex:idx_activity_profile_period" json:"period_start"`     // 周期开始
	PeriodEnd      time.Time `gorm:"not null;index" json:"period_end"`                                // 周期结束
	PersonalVolume Money     `gorm:"type:decimal(20,2);not null;default:0" json:"personal_volume"`    // 周期内个人业绩
	ActivityType   string    `gorm:"type:varchar(30)" json:"activity_type"`                           // 活跃度来源类型
	CreatedAt      time.Time `json:"created_at"`                                                      // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (UserActivity) TableName() string {
	return "user_activities"
}
