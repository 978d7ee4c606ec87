package usecase

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/incident_radar/app/display/internal/domain"
	"github.com/iWorld-y/incident_radar/app/display/internal/repo"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/extract"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/llm"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

// ReportUseCase 报告业务逻辑
type ReportUseCase struct {
	repo repo.ReportRepo
	gen  repo.ReportGenerator
	log  *log.Helper
}

// NewReportUseCase 创建报告业务逻辑实例
func NewReportUseCase(repo repo.ReportRepo, gen repo.ReportGenerator, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, gen: gen, log: log.NewHelper(logger)}
}

// GenerateStudent 为单个学生生成并保存报告
func (uc *ReportUseCase) GenerateStudent(ctx context.Context, studentID, name string) (*domain.Report, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, errors.BadRequest("INVALID_STUDENT", "student id is required")
	}
	incidents, err := uc.repo.ListIncidents(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return nil, errors.NotFound("INCIDENTS_NOT_FOUND", "no incidents for student "+studentID)
	}

	subject := model.Subject{ID: studentID, Name: name}
	if subject.Name == "" {
		subject.Name = incidents[0].StudentName
	}
	report, genErr := uc.gen.StudentReport(ctx, subject, incidents)
	return uc.finish(ctx, report, genErr)
}

// GenerateInstitution 生成并保存全校报告
func (uc *ReportUseCase) GenerateInstitution(ctx context.Context) (*domain.Report, error) {
	incidents, err := uc.repo.ListIncidents(ctx, "")
	if err != nil {
		return nil, err
	}
	report, genErr := uc.gen.InstitutionReport(ctx, incidents)
	return uc.finish(ctx, report, genErr)
}

// finish 保存报告（包括降级报告），生成失败映射为 503
func (uc *ReportUseCase) finish(ctx context.Context, report *model.Report, genErr error) (*domain.Report, error) {
	if report != nil {
		if err := uc.repo.SaveReport(ctx, report); err != nil {
			uc.log.Errorf("保存报告失败 [%s]: %v", report.ID, err)
		}
	}
	if genErr != nil {
		var terr *llm.TransportError
		if stderrors.As(genErr, &terr) {
			return nil, errors.ServiceUnavailable("GENERATION_FAILED", genErr.Error()).
				WithMetadata(map[string]string{"targets": strings.Join(terr.Targets(), ",")})
		}
		return nil, genErr
	}
	return domain.FromModel(report), nil
}

// Extract 对一段已有的生成文本运行段落抽取，不调用生成端也不保存
func (uc *ReportUseCase) Extract(ctx context.Context, raw string, sections []string, truncated bool) (*domain.Report, error) {
	var expected []model.Section
	for _, name := range sections {
		sec, ok := model.ParseSection(strings.ToUpper(strings.TrimSpace(name)))
		if !ok {
			return nil, errors.BadRequest("INVALID_SECTION", "unknown section "+name)
		}
		expected = append(expected, sec)
	}
	report := extract.Build(raw, extract.Options{Expected: expected, Truncated: truncated})
	return domain.FromModel(report), nil
}

// Get 根据ID获取报告
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*domain.Report, error) {
	report, err := uc.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.FromModel(report), nil
}
