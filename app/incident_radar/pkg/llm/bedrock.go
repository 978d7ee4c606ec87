package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
)

// invoker bedrockruntime.Client 的最小子集
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// bedrockTarget AWS Bedrock 上的 Anthropic messages 模型
type bedrockTarget struct {
	name        string
	model       string
	client      invoker
	maxTokens   int
	temperature float32
}

func newBedrockTarget(ctx context.Context, cfg config.TargetConfig) (Target, error) {
	region := cfg.Region
	if region == "" {
		region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	if region == "" {
		return nil, fmt.Errorf("bedrock 目标 [%s] 未设置 region", cfg.Name)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return &bedrockTarget{
		name:        cfg.Name,
		model:       cfg.Model,
		client:      bedrockruntime.NewFromConfig(awsCfg),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (t *bedrockTarget) Name() string { return t.name }

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (t *bedrockTarget) Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error) {
	payload := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"messages": []map[string]string{
			{"role": "user", "content": p.User},
		},
		"max_tokens": t.maxTokens,
	}
	if p.System != "" {
		payload["system"] = p.System
	}
	if t.temperature > 0 {
		payload["temperature"] = t.temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化 bedrock 请求失败: %w", err)
	}

	output, err := t.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(t.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock 调用失败: %w", err)
	}

	var parsed bedrockResponse
	if err := json.Unmarshal(output.Body, &parsed); err != nil {
		return nil, fmt.Errorf("解析 bedrock 响应失败: %w", err)
	}

	var parts []string
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return &dm.Generation{
		Text:      cleanText(strings.Join(parts, "\n")),
		Target:    t.name,
		Truncated: parsed.StopReason == "max_tokens",
	}, nil
}
