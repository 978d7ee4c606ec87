package server

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/incident_radar/app/display/internal/conf"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/engine"
	irLogger "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/logger"
)

// NewReportEngine 初始化 incident_radar 引擎，报告由 data 层保存，这里不传 store
func NewReportEngine(c *conf.Radar, logger log.Logger) (*engine.Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("missing radar config")
	}

	// 将 internal/conf.Radar 转换为 pkg/config.Config
	cfg := toConfig(c)
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 初始化日志
	if err := irLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init incident_radar logger: %v", err)
		_ = irLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(context.Background(), cfg, nil)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, err
	}
	return eng, nil
}

func toConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{}
	if c.Llm != nil {
		for _, t := range c.Llm.Targets {
			if t == nil {
				continue
			}
			cfg.LLM.Targets = append(cfg.LLM.Targets, config.TargetConfig{
				Name:        t.Name,
				Type:        t.Type,
				BaseURL:     t.BaseUrl,
				APIKey:      t.ApiKey,
				APIKeyEnv:   t.ApiKeyEnv,
				Model:       t.Model,
				Region:      t.Region,
				MaxTokens:   int(t.MaxTokens),
				Temperature: t.Temperature,
				Timeout:     int(t.Timeout),
			})
		}
	}
	if r := c.Report; r != nil {
		cfg.Report = config.ReportConfig{
			DescriptionBudget: int(r.DescriptionBudget),
			MaxDescriptions:   int(r.MaxDescriptions),
			PositiveType:      r.PositiveType,
			KnownTypes:        r.KnownTypes,
			KnownSeverities:   r.KnownSeverities,
			SevereLabels:      r.SevereLabels,
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if cc := c.Concurrency; cc != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS:        int(cc.Qps),
			RPM:        int(cc.Rpm),
			MaxRetries: int(cc.MaxRetries),
		}
	}
	return cfg
}
