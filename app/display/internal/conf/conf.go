package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Radar  *Radar  `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Radar struct {
	Llm         *LLM         `json:"llm"`
	Report      *Report      `json:"report"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
}

type LLM struct {
	Targets []*Target `json:"targets"`
}

type Target struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	ApiKeyEnv   string  `json:"api_key_env"`
	Model       string  `json:"model"`
	Region      string  `json:"region"`
	MaxTokens   int32   `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Timeout     int32   `json:"timeout"`
}

type Report struct {
	DescriptionBudget int32    `json:"description_budget"`
	MaxDescriptions   int32    `json:"max_descriptions"`
	PositiveType      string   `json:"positive_type"`
	KnownTypes        []string `json:"known_types"`
	KnownSeverities   []string `json:"known_severities"`
	SevereLabels      []string `json:"severe_labels"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps        int32 `json:"qps"`
	Rpm        int32 `json:"rpm"`
	MaxRetries int32 `json:"max_retries"`
}
