package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/logger"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/metrics"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
)

// Chain 按顺序回退的生成目标列表，所有目标共享一个限流器
type Chain struct {
	targets    []Target
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// NewChain 创建回退链。limiter 为 nil 时不限流
func NewChain(targets []Target, limiter *rate.Limiter, maxRetries int) *Chain {
	return &Chain{
		targets:    targets,
		limiter:    limiter,
		maxRetries: maxRetries,
		baseDelay:  2 * time.Second,
	}
}

// Generate 依次尝试每个目标，直到拿到非空文本
func (c *Chain) Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error) {
	terr := &TransportError{}
	for _, t := range c.targets {
		gen, err := c.attempt(ctx, t, p)
		if err == nil {
			metrics.GenerationRequests.WithLabelValues(t.Name(), "success").Inc()
			if len(terr.Attempts) > 0 {
				logger.Log.Infof("生成目标 [%s] 回退成功，此前失败 %d 次", t.Name(), len(terr.Attempts))
			}
			return gen, nil
		}

		result := "error"
		if errors.Is(err, ErrEmptyText) {
			result = "empty"
		}
		metrics.GenerationRequests.WithLabelValues(t.Name(), result).Inc()
		logger.Log.Warnf("生成目标 [%s] 失败: %v", t.Name(), err)
		terr.Attempts = append(terr.Attempts, Attempt{Target: t.Name(), Err: err})

		if ctx.Err() != nil {
			break
		}
	}
	return nil, terr
}

// attempt 调用单个目标，限流错误按指数退避重试
func (c *Chain) attempt(ctx context.Context, t Target, p prompt.Prompt) (*dm.Generation, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		gen, err := t.Generate(ctx, p)
		if err != nil {
			if isRateLimited(err) && i < c.maxRetries {
				lastErr = err
				delay := c.baseDelay * time.Duration(1<<i)
				logger.Log.Debugf("生成目标 [%s] 被限流，%v 后重试", t.Name(), delay)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, err
		}
		if gen == nil || strings.TrimSpace(gen.Text) == "" {
			return nil, ErrEmptyText
		}
		gen.Target = t.Name()
		gen.Duration = time.Since(start)
		return gen, nil
	}
	return nil, lastErr
}
