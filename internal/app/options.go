package service

import (
	"github.com/okian/faceoff/internal/domain/pairing"
	"github.com/okian/faceoff/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of snapshots waiting to be written.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithKFactor sets the Elo K-factor.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithBaselineRating sets the rating every item starts with.
func WithBaselineRating(r float64) Option {
	return func(s *Service) {
		if r > 0 {
			s.baseline = r
		}
	}
}

// WithCheckpointSchedule enables periodic full saves on a cron spec such as "@every 5m".
func WithCheckpointSchedule(spec string) Option {
	return func(s *Service) {
		s.checkpointSpec = spec
	}
}

// WithSelector overrides the pair selector, e.g. with a seeded one.
func WithSelector(sel *pairing.Selector) Option {
	return func(s *Service) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
