package queue

import (
	"encoding/json"

	"github.com/XTeam-Pro/AIMLM/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskBonusRetry 奖金步骤重试任务
	TaskBonusRetry = constants.TaskBonusRetry
	// TaskPlacementCron 双轨树安置巡检任务
	TaskPlacementCron = constants.TaskPlacementCron
	// TaskGenerationBatch 世代奖金批次任务
	TaskGenerationBatch = constants.TaskGenerationBatch
)

// BonusRetryPayload 奖金重试任务载荷
type BonusRetryPayload struct {
	BuyerID uint   `json:"buyer_id"`
	Step    string `json:"step"`
}

// PlacementCronPayload 安置巡检任务载荷
type PlacementCronPayload struct{}

// GenerationBatchPayload 世代奖金批次任务载荷
type GenerationBatchPayload struct {
	Period string `json:"period"` // YYYY-MM，空则取当前自然月
}

// NewBonusRetryTask 创建奖金重试任务
func NewBonusRetryTask(payload BonusRetryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBonusRetry, body), nil
}

// NewPlacementCronTask 创建安置巡检任务
func NewPlacementCronTask() (*asynq.Task, error) {
	body, err := json.Marshal(PlacementCronPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlacementCron, body), nil
}

// NewGenerationBatchTask 创建世代奖金批次任务
func NewGenerationBatchTask(payload GenerationBatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerationBatch, body), nil
}
