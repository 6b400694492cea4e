package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/provider"
	"github.com/XTeam-Pro/AIMLM/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskBonusRetry, c.handleBonusRetry)
	mux.HandleFunc(queue.TaskPlacementCron, c.handlePlacementCron)
	mux.HandleFunc(queue.TaskGenerationBatch, c.handleGenerationBatch)
}

func (c *Consumer) handleBonusRetry(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_bonus_retry_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BonusRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_bonus_retry_unmarshal_failed", "error", err)
		return err
	}
	if payload.BuyerID == 0 {
		logger.Debugw("worker_bonus_retry_skip_invalid_payload", "buyer_id", payload.BuyerID)
		return nil
	}
	if c.MLMService == nil {
		logger.Warnw("worker_bonus_retry_skip_service_nil", "buyer_id", payload.BuyerID)
		return nil
	}
	if err := c.MLMService.RetryStep(payload.BuyerID, strings.TrimSpace(payload.Step)); err != nil {
		logger.Warnw("worker_bonus_retry_failed",
			"buyer_id", payload.BuyerID,
			"step", payload.Step,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePlacementCron(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_placement_cron_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.BinaryTreeService == nil {
		logger.Warnw("worker_placement_cron_skip_service_nil")
		return nil
	}
	placed, err := c.BinaryTreeService.RunPlacementCron()
	if err != nil {
		logger.Warnw("worker_placement_cron_failed", "error", err)
		return err
	}
	logger.Infow("worker_placement_cron_done", "placed", placed)
	return nil
}

func (c *Consumer) handleGenerationBatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_generation_batch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GenerationBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_generation_batch_unmarshal_failed", "error", err)
		return err
	}
	if c.GenerationBonusService == nil {
		logger.Warnw("worker_generation_batch_skip_service_nil")
		return nil
	}
	result, err := c.GenerationBonusService.CalculateAndApply(strings.TrimSpace(payload.Period))
	if err != nil {
		logger.Warnw("worker_generation_batch_failed", "period", payload.Period, "error", err)
		return err
	}
	logger.Infow("worker_generation_batch_done",
		"period", result.Period,
		"source_count", result.SourceCount,
		"paid_count", result.PaidCount,
		"total_amount", result.TotalAmount.String(),
	)
	return nil
}
