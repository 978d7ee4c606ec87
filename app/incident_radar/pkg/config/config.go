package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Report      ReportConfig      `yaml:"report"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
}

// LLMConfig 生成端配置，targets 按顺序回退
type LLMConfig struct {
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig 单个生成目标
type TargetConfig struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"` // openai | bedrock
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	APIKeyEnv   string  `yaml:"api_key_env"` // api_key 为空时从该环境变量读取
	Model       string  `yaml:"model"`
	Region      string  `yaml:"region"` // bedrock 使用
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // 秒
}

// ReportConfig 报告生成相关配置
type ReportConfig struct {
	DescriptionBudget int      `yaml:"description_budget"`
	MaxDescriptions   int      `yaml:"max_descriptions"`
	PositiveType      string   `yaml:"positive_type"`
	KnownTypes        []string `yaml:"known_types"`
	KnownSeverities   []string `yaml:"known_severities"`
	SevereLabels      []string `yaml:"severe_labels"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN 返回 lib/pq 连接串
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS        int `yaml:"qps"`
	RPM        int `yaml:"rpm"`
	MaxRetries int `yaml:"max_retries"`
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Defaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults 填充未设置的字段
func (c *Config) Defaults() {
	if c.Report.DescriptionBudget <= 0 {
		c.Report.DescriptionBudget = 60
	}
	if c.Report.MaxDescriptions <= 0 {
		c.Report.MaxDescriptions = 15
	}
	if c.Report.PositiveType == "" {
		c.Report.PositiveType = "positivo"
	}
	if len(c.Report.SevereLabels) == 0 {
		c.Report.SevereLabels = []string{"high", "critical"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.MaxRetries <= 0 {
		c.Concurrency.MaxRetries = 3
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	for i := range c.LLM.Targets {
		t := &c.LLM.Targets[i]
		if t.Type == "" {
			t.Type = "openai"
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("%s-%d", t.Type, i)
		}
		if t.MaxTokens <= 0 {
			t.MaxTokens = 1500
		}
		if t.APIKey == "" && t.APIKeyEnv != "" {
			t.APIKey = os.Getenv(t.APIKeyEnv)
		}
	}
}

// Validate 校验必须项
func (c *Config) Validate() error {
	if len(c.LLM.Targets) == 0 {
		return fmt.Errorf("配置错误: 未设置生成目标 (llm.targets)")
	}
	for _, t := range c.LLM.Targets {
		if t.Model == "" {
			return fmt.Errorf("配置错误: 生成目标 [%s] 未设置 model", t.Name)
		}
		switch t.Type {
		case "openai", "bedrock":
		default:
			return fmt.Errorf("配置错误: 生成目标 [%s] 类型不支持: %q", t.Name, t.Type)
		}
	}
	return nil
}
