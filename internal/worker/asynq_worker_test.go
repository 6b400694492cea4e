package worker

import (
	"context"
	"testing"

	"github.com/XTeam-Pro/AIMLM/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleBonusRetryNilGuards(t *testing.T) {
	var nilConsumer *Consumer
	if err := nilConsumer.handleBonusRetry(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer should be a no-op, got: %v", err)
	}

	consumer := NewConsumer(nil)
	if err := consumer.handleBonusRetry(context.Background(), nil); err != nil {
		t.Fatalf("nil task should be a no-op, got: %v", err)
	}
}

func TestHandleBonusRetryInvalidPayload(t *testing.T) {
	consumer := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskBonusRetry, []byte("{not json"))
	if err := consumer.handleBonusRetry(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}

	// buyer_id=0 的载荷直接忽略，不应报错也不应触达服务
	task, err := queue.NewBonusRetryTask(queue.BonusRetryPayload{BuyerID: 0, Step: "sponsor"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleBonusRetry(context.Background(), task); err != nil {
		t.Fatalf("zero buyer_id should be skipped, got: %v", err)
	}
}

func TestHandleGenerationBatchMalformedPayload(t *testing.T) {
	consumer := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskGenerationBatch, []byte("not-json"))
	if err := consumer.handleGenerationBatch(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
}

func TestRegisterNilMux(t *testing.T) {
	consumer := NewConsumer(nil)
	// 不应 panic
	consumer.Register(nil)

	var nilConsumer *Consumer
	nilConsumer.Register(asynq.NewServeMux())
}
