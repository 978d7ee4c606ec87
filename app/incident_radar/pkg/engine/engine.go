package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/google/uuid"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/extract"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/llm"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/logger"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/metrics"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/prompt"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/stats"
)

// Generator 文本生成端，llm.Chain 实现了该接口
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (*dm.Generation, error)
}

// Store 事件来源与报告存储
type Store interface {
	ListIncidents(ctx context.Context, studentID string) ([]dm.Incident, error)
	SaveReport(ctx context.Context, report *dm.Report) error
}

// Options 报告生成选项
type Options struct {
	Taxonomy stats.Taxonomy
	Prompt   prompt.Options
}

// Engine 核心处理引擎
type Engine struct {
	gen   Generator
	store Store
	opts  Options
}

// New 使用已构建的生成端创建引擎，store 可为 nil
func New(gen Generator, store Store, opts Options) *Engine {
	return &Engine{gen: gen, store: store, opts: opts}
}

// NewEngine 根据配置创建引擎实例
func NewEngine(ctx context.Context, cfg *config.Config, store Store) (*Engine, error) {
	targets, err := llm.NewTargets(ctx, cfg.LLM.Targets)
	if err != nil {
		return nil, err
	}

	limiter := llm.NewLimiter(cfg.Concurrency)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limiter.Limit(), limiter.Burst())

	chain := llm.NewChain(targets, limiter, cfg.Concurrency.MaxRetries)
	return New(chain, store, OptionsFromConfig(cfg.Report)), nil
}

// OptionsFromConfig 把报告配置转换为引擎选项，未配置的取值范围使用默认值
func OptionsFromConfig(rc config.ReportConfig) Options {
	tax := stats.DefaultTaxonomy()
	if len(rc.KnownTypes) > 0 {
		tax.KnownTypes = rc.KnownTypes
	}
	if len(rc.KnownSeverities) > 0 {
		tax.KnownSeverities = rc.KnownSeverities
	}
	if rc.PositiveType != "" {
		tax.PositiveType = rc.PositiveType
	}
	return Options{
		Taxonomy: tax,
		Prompt: prompt.Options{
			DescriptionBudget: rc.DescriptionBudget,
			MaxDescriptions:   rc.MaxDescriptions,
			SevereLabels:      rc.SevereLabels,
		},
	}
}

// StudentReport 单个学生：一次合并调用后做完整段落抽取
func (e *Engine) StudentReport(ctx context.Context, subject dm.Subject, incidents []dm.Incident) (*dm.Report, error) {
	start := time.Now()
	snap := stats.Build(incidents, e.opts.Taxonomy)
	logger.Log.Debugf("学生 [%s] 统计快照: %s", subject.ID, gson.ToString(snap))

	p := prompt.RenderStudent(subject, snap, incidents, e.opts.Prompt)
	gen, err := e.gen.Generate(ctx, p)
	if err != nil {
		report := degraded(dm.ScopeStudent, subject.ID, err)
		observe(report, "degraded", start)
		return report, fmt.Errorf("生成学生 [%s] 报告失败: %w", subject.ID, err)
	}
	logger.Log.Debugf("学生 [%s] 原始生成结果: %s", subject.ID, gson.ToString(gen))

	report := extract.Build(gen.Text, extract.Options{
		Expected:  prompt.StudentSections(),
		Truncated: gen.Truncated,
	})
	report.ID = uuid.NewString()
	report.Scope = dm.ScopeStudent
	report.SubjectID = subject.ID
	report.Targets = []string{gen.Target}
	observe(report, "ok", start)
	return report, nil
}

type callResult struct {
	gen *dm.Generation
	err error
}

// InstitutionReport 全校范围：3 次独立调用并发执行，全部结束后合并
func (e *Engine) InstitutionReport(ctx context.Context, incidents []dm.Incident) (*dm.Report, error) {
	start := time.Now()
	snap := stats.Build(incidents, e.opts.Taxonomy)
	logger.Log.Debugf("全校统计快照: %s", gson.ToString(snap))

	prompts := prompt.RenderInstitution(snap, e.opts.Prompt)

	// 每个调用只写自己的槽位
	var results [3]callResult
	var wg sync.WaitGroup
	for i := range prompts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gen, err := e.gen.Generate(ctx, prompts[i])
			results[i] = callResult{gen: gen, err: err}
		}(i)
	}
	wg.Wait()

	report, err := mergeInstitution(prompts, results)
	report.ID = uuid.NewString()
	report.Scope = dm.ScopeInstitution
	if err != nil {
		observe(report, "degraded", start)
		return report, fmt.Errorf("生成全校报告失败: %w", err)
	}

	outcome := "ok"
	for _, r := range results {
		if r.err != nil {
			outcome = "partial"
			break
		}
	}
	observe(report, outcome, start)
	return report, nil
}

// mergeInstitution 合并 3 个槽位。只做标记清理，不做完整段落抽取。
// 失败的摘要与建议使用通用文本，失败的预警留空；全部失败时返回一个 TransportError
func mergeInstitution(prompts [3]prompt.Prompt, results [3]callResult) (*dm.Report, error) {
	var failed []error
	fields := make(map[dm.Section]string, len(prompts))
	var targets []string
	signal := false

	for i, p := range prompts {
		r := results[i]
		if r.err != nil {
			logger.Log.Warnf("段落 [%s] 生成失败: %v", p.Section, r.err)
			failed = append(failed, r.err)
			fields[p.Section] = ""
			continue
		}
		fields[p.Section] = extract.StripHeading(extract.Normalize(r.gen.Text), p.Section)
		targets = append(targets, r.gen.Target)
		signal = signal || r.gen.Truncated
	}

	if len(failed) == len(prompts) {
		terr := joinTransport(prompts, results)
		return degraded(dm.ScopeInstitution, "", terr), terr
	}

	report := &dm.Report{
		Targets:     targets,
		GeneratedAt: time.Now().UTC(),
		Truncated: signal &&
			(fields[dm.SectionSummary] == "" || fields[dm.SectionRecommendations] == ""),
	}
	if fields[dm.SectionSummary] == "" {
		fields[dm.SectionSummary] = extract.FallbackSummary
	}
	if fields[dm.SectionRecommendations] == "" {
		fields[dm.SectionRecommendations] = extract.FallbackRecommendation
	} else {
		fields[dm.SectionRecommendations] = extract.Relineate(fields[dm.SectionRecommendations])
	}
	report.SetFields(fields)
	report.Composite = extract.Composite(fields, "")
	return report, nil
}

// joinTransport 把各槽位的失败合并为一个 TransportError
func joinTransport(prompts [3]prompt.Prompt, results [3]callResult) *llm.TransportError {
	out := &llm.TransportError{}
	for i, r := range results {
		if r.err == nil {
			continue
		}
		var terr *llm.TransportError
		if errors.As(r.err, &terr) {
			out.Attempts = append(out.Attempts, terr.Attempts...)
			continue
		}
		out.Attempts = append(out.Attempts, llm.Attempt{Target: prompts[i].Section.String(), Err: r.err})
	}
	return out
}

// degraded 生成失败时返回的降级报告
func degraded(scope dm.Scope, subjectID string, err error) *dm.Report {
	report := &dm.Report{
		ID:          uuid.NewString(),
		Scope:       scope,
		SubjectID:   subjectID,
		Error:       err.Error(),
		GeneratedAt: time.Now().UTC(),
	}
	var terr *llm.TransportError
	if errors.As(err, &terr) {
		report.Targets = terr.Targets()
	}
	return report
}

func observe(report *dm.Report, outcome string, start time.Time) {
	scope := string(report.Scope)
	metrics.Reports.WithLabelValues(scope, outcome).Inc()
	metrics.ReportDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}

// RunOptions 运行选项
type RunOptions struct {
	Scope       dm.Scope
	StudentID   string
	StudentName string
	// Incidents 非 nil 时直接使用，否则从 store 读取
	Incidents        []dm.Incident
	ProgressCallback func(status string, progress int)
}

// Run 执行一次报告生成任务：读取事件、生成、保存
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*dm.Report, error) {
	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}
	progress("starting", 0)

	if opts.Scope == dm.ScopeStudent && strings.TrimSpace(opts.StudentID) == "" {
		return nil, fmt.Errorf("student scope requires a student id")
	}

	incidents := opts.Incidents
	if incidents == nil {
		if e.store == nil {
			return nil, fmt.Errorf("no incidents provided and no store configured")
		}
		var err error
		incidents, err = e.store.ListIncidents(ctx, opts.StudentID)
		if err != nil {
			return nil, fmt.Errorf("读取事件记录失败: %w", err)
		}
	}
	progress("incidents loaded", 20)

	var (
		report *dm.Report
		genErr error
	)
	switch opts.Scope {
	case dm.ScopeStudent:
		incidents = filterStudent(incidents, opts.StudentID)
		logger.Log.Infof("开始为学生 [%s] 生成报告，共 %d 条事件", opts.StudentID, len(incidents))
		report, genErr = e.StudentReport(ctx, subjectOf(opts, incidents), incidents)
	case dm.ScopeInstitution, "":
		logger.Log.Infof("开始生成全校报告，共 %d 条事件", len(incidents))
		report, genErr = e.InstitutionReport(ctx, incidents)
	default:
		return nil, fmt.Errorf("unknown scope %q", opts.Scope)
	}
	progress("report generated", 80)

	if e.store != nil {
		if err := e.store.SaveReport(ctx, report); err != nil {
			logger.Log.Errorf("保存报告失败 [%s]: %v", report.ID, err)
		} else {
			logger.Log.Infof("报告已保存到数据库 [%s]", report.ID)
		}
	}

	progress("completed", 100)
	return report, genErr
}

func filterStudent(incidents []dm.Incident, studentID string) []dm.Incident {
	out := make([]dm.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.StudentID == studentID {
			out = append(out, inc)
		}
	}
	return out
}

func subjectOf(opts RunOptions, incidents []dm.Incident) dm.Subject {
	subject := dm.Subject{ID: opts.StudentID, Name: opts.StudentName}
	if subject.Name == "" {
		for _, inc := range incidents {
			if inc.StudentName != "" {
				subject.Name = inc.StudentName
				break
			}
		}
	}
	return subject
}
