package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
)

// ErrEmptyText 生成目标返回了空文本
var ErrEmptyText = errors.New("生成结果为空")

// Target 单个生成目标
type Target interface {
	Name() string
	Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error)
}

// Attempt 一次失败的目标尝试
type Attempt struct {
	Target string
	Err    error
}

// TransportError 所有生成目标均失败
type TransportError struct {
	Attempts []Attempt
}

func (e *TransportError) Error() string {
	if len(e.Attempts) == 0 {
		return "生成失败: 未配置生成目标"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Target, a.Err))
	}
	return "所有生成目标均失败: " + strings.Join(parts, "; ")
}

// Unwrap 支持 errors.Is / errors.As 检查每个目标的错误
func (e *TransportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Targets 返回尝试过的目标名称
func (e *TransportError) Targets() []string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Target)
	}
	return names
}

// NewTargets 按配置顺序创建生成目标
func NewTargets(ctx context.Context, cfgs []config.TargetConfig) ([]Target, error) {
	targets := make([]Target, 0, len(cfgs))
	for _, cfg := range cfgs {
		var (
			t   Target
			err error
		)
		switch cfg.Type {
		case "", "openai":
			t, err = newEinoTarget(ctx, cfg)
		case "bedrock":
			t, err = newBedrockTarget(ctx, cfg)
		default:
			err = fmt.Errorf("不支持的生成目标类型 %q", cfg.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("初始化生成目标 [%s] 失败: %w", cfg.Name, err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// NewLimiter 根据 RPM 与 QPS 创建所有目标共享的限流器
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(cfg.RPM) / 60.0)
	burst := cfg.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

// cleanText 去掉模型偶尔包裹的代码块标记
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		// 去掉语言标识，例如 ```text
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isRateLimited 判断是否为限流错误（HTTP 429 或 Bedrock 节流）
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "throttl")
}
