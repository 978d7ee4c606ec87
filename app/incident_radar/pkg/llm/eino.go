package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
)

// einoTarget OpenAI 兼容接口
type einoTarget struct {
	name        string
	chatModel   model.BaseChatModel
	maxTokens   int
	temperature float32
}

func newEinoTarget(ctx context.Context, cfg config.TargetConfig) (Target, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &einoTarget{
		name:        cfg.Name,
		chatModel:   chatModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (t *einoTarget) Name() string { return t.name }

func (t *einoTarget) Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: p.System},
		{Role: schema.User, Content: p.User},
	}

	var opts []model.Option
	if t.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(t.maxTokens))
	}
	if t.temperature > 0 {
		opts = append(opts, model.WithTemperature(t.temperature))
	}

	resp, err := t.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	gen := &dm.Generation{Text: cleanText(resp.Content), Target: t.name}
	if resp.ResponseMeta != nil && resp.ResponseMeta.FinishReason == "length" {
		gen.Truncated = true
	}
	return gen, nil
}
