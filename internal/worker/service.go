package worker

import (
	"context"
	"errors"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/config"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	placementSweepInterval = 10 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.BinaryTreeService != nil {
		go s.runPlacementSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPlacementSweepLoop 周期扫描待安置档案并放入双轨树
func (s *Service) runPlacementSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.BinaryTreeService == nil {
		return
	}
	runOnce := func() {
		placed, err := s.consumer.BinaryTreeService.RunPlacementCron()
		if err != nil {
			logger.Warnw("worker_placement_sweep_failed", "error", err)
			return
		}
		if placed > 0 {
			logger.Infow("worker_placement_sweep_done", "placed", placed)
		}
	}
	runOnce()

	ticker := time.NewTicker(placementSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
