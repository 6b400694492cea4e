package models

import "time"

// UserRankHistory 等级晋升历史
type UserRankHistory struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                              // 主键
	ProfileID           uint      `gorm:"not null;index" json:"profile_id"`                                  // 网络档案ID
	Rank                string    `gorm:"type:varchar(20);not null" json:"rank"`                             // 晋升后的等级
	Club                string    `gorm:"type:varchar(20)" json:"club"`                                      // 晋升时的俱乐部
	QualificationPeriod string    `gorm:"type:varchar(10)" json:"qualification_period"`                      // 达标周期（YYYY-MM）
	PersonalVolume      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"personal_volume"`      // 晋升时个人业绩
	GroupVolume         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"group_volume"`         // 晋升时团队业绩
	AchievedAt          time.Time `gorm:"index" json:"achieved_at"`                                          // 晋升时间
	CreatedAt           time.Time `json:"created_at"`                                                        // 创建时间
}

// TableName 指定表名
func (UserRankHistory) TableName() string {
	return "user_rank_histories"
}
