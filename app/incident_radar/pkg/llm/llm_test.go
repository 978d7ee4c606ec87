package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
)

type fakeTarget struct {
	name  string
	texts []string
	errs  []error
	calls int
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	text := ""
	if i < len(f.texts) {
		text = f.texts[i]
	}
	return &dm.Generation{Text: text}, nil
}

func newTestChain(targets ...Target) *Chain {
	c := NewChain(targets, nil, 2)
	c.baseDelay = time.Millisecond
	return c
}

func TestChain_FirstTargetAnswers(t *testing.T) {
	primary := &fakeTarget{name: "primary", texts: []string{"RESUMEN: ok"}}
	backup := &fakeTarget{name: "backup", texts: []string{"nunca"}}

	gen, err := newTestChain(primary, backup).Generate(context.Background(), prompt.Prompt{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Target != "primary" || gen.Text != "RESUMEN: ok" {
		t.Errorf("gen = %+v", gen)
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times, want 0", backup.calls)
	}
}

func TestChain_FallsBackOnErrorAndEmptyText(t *testing.T) {
	failing := &fakeTarget{name: "failing", errs: []error{errors.New("connection refused")}}
	empty := &fakeTarget{name: "empty", texts: []string{"   "}}
	good := &fakeTarget{name: "good", texts: []string{"texto"}}

	gen, err := newTestChain(failing, empty, good).Generate(context.Background(), prompt.Prompt{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Target != "good" {
		t.Errorf("Target = %q, want good", gen.Target)
	}
	if failing.calls != 1 {
		t.Errorf("non rate-limit error retried: %d calls", failing.calls)
	}
}

func TestChain_RetriesRateLimited(t *testing.T) {
	limited := &fakeTarget{
		name:  "limited",
		errs:  []error{errors.New("status 429: Too Many Requests"), errors.New("status 429")},
		texts: []string{"", "", "por fin"},
	}

	gen, err := newTestChain(limited).Generate(context.Background(), prompt.Prompt{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "por fin" || limited.calls != 3 {
		t.Errorf("gen = %+v after %d calls", gen, limited.calls)
	}
}

func TestChain_AllFail(t *testing.T) {
	refused := errors.New("connection refused")
	a := &fakeTarget{name: "a", errs: []error{refused}}
	b := &fakeTarget{name: "b", texts: []string{""}}

	gen, err := newTestChain(a, b).Generate(context.Background(), prompt.Prompt{})
	if gen != nil {
		t.Errorf("gen = %+v, want nil", gen)
	}

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error %v is not a *TransportError", err)
	}
	if got := strings.Join(terr.Targets(), ","); got != "a,b" {
		t.Errorf("attempted targets = %q, want a,b", got)
	}
	if !errors.Is(err, refused) || !errors.Is(err, ErrEmptyText) {
		t.Errorf("TransportError should wrap every target error: %v", err)
	}
}

func TestChain_NoTargets(t *testing.T) {
	_, err := newTestChain().Generate(context.Background(), prompt.Prompt{})
	var terr *TransportError
	if !errors.As(err, &terr) || len(terr.Attempts) != 0 {
		t.Errorf("Generate() error = %v, want empty TransportError", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  RESUMEN: x  ", "RESUMEN: x"},
		{"```\nRESUMEN: x\n```", "RESUMEN: x"},
		{"```text\nRESUMEN: x\n```", "RESUMEN: x"},
		{"```RESUMEN: uno dos\nmás```", "RESUMEN: uno dos\nmás"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type fakeChatModel struct {
	resp     *schema.Message
	messages []*schema.Message
	options  *model.Options
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.messages = input
	f.options = model.GetCommonOptions(&model.Options{}, opts...)
	return f.resp, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("not implemented")
}

func TestEinoTarget_Generate(t *testing.T) {
	cm := &fakeChatModel{resp: &schema.Message{
		Role:         schema.Assistant,
		Content:      "```\nRESUMEN: parcial\n```",
		ResponseMeta: &schema.ResponseMeta{FinishReason: "length"},
	}}
	target := &einoTarget{name: "primary", chatModel: cm, maxTokens: 800, temperature: 0.2}

	gen, err := target.Generate(context.Background(), prompt.Prompt{System: "sys", User: "usr"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "RESUMEN: parcial" || !gen.Truncated || gen.Target != "primary" {
		t.Errorf("gen = %+v", gen)
	}
	if len(cm.messages) != 2 || cm.messages[0].Role != schema.System || cm.messages[1].Content != "usr" {
		t.Errorf("messages = %+v", cm.messages)
	}
	if cm.options.MaxTokens == nil || *cm.options.MaxTokens != 800 {
		t.Errorf("max tokens option not passed: %+v", cm.options)
	}
	if cm.options.Temperature == nil || *cm.options.Temperature != 0.2 {
		t.Errorf("temperature option not passed: %+v", cm.options)
	}
}

type fakeInvoker struct {
	body  []byte
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestBedrockTarget_Generate(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":"RESUMEN: bien"}],"stop_reason":"max_tokens"}`)}
	target := &bedrockTarget{name: "bedrock", model: "anthropic.claude", client: inv, maxTokens: 500}

	gen, err := target.Generate(context.Background(), prompt.Prompt{System: "sys", User: "usr"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "RESUMEN: bien" || !gen.Truncated {
		t.Errorf("gen = %+v", gen)
	}

	var payload map[string]any
	if err := json.Unmarshal(inv.input.Body, &payload); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if payload["system"] != "sys" || payload["max_tokens"] != float64(500) {
		t.Errorf("payload = %v", payload)
	}
	if *inv.input.ModelId != "anthropic.claude" {
		t.Errorf("ModelId = %q", *inv.input.ModelId)
	}
}

func TestBedrockTarget_BadResponse(t *testing.T) {
	target := &bedrockTarget{name: "bedrock", client: &fakeInvoker{body: []byte("no json")}}
	if _, err := target.Generate(context.Background(), prompt.Prompt{}); err == nil {
		t.Error("Generate() error = nil, want decode error")
	}
}
