package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/incident_radar/app/display/internal/repo"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/storage"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

// NewReportRepo 创建报告仓库
func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) ListIncidents(ctx context.Context, studentID string) ([]model.Incident, error) {
	incidents, err := r.data.store.ListIncidents(ctx, studentID)
	if err != nil {
		r.log.Errorf("读取事件记录失败: %v", err)
		return nil, err
	}
	return incidents, nil
}

func (r *reportRepo) SaveReport(ctx context.Context, report *model.Report) error {
	return r.data.store.SaveReport(ctx, report)
}

func (r *reportRepo) GetReport(ctx context.Context, id string) (*model.Report, error) {
	report, err := r.data.store.GetReport(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("REPORT_NOT_FOUND", "report not found")
		}
		return nil, err
	}
	return report, nil
}
