package repo

import (
	"context"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

// ReportRepo 报告仓库接口
type ReportRepo interface {
	// ListIncidents 读取事件记录，studentID 为空时读取全校
	ListIncidents(ctx context.Context, studentID string) ([]model.Incident, error)
	// SaveReport 保存报告
	SaveReport(ctx context.Context, report *model.Report) error
	// GetReport 根据ID获取报告
	GetReport(ctx context.Context, id string) (*model.Report, error)
}

// ReportGenerator 报告生成接口，由 incident_radar 引擎实现
type ReportGenerator interface {
	StudentReport(ctx context.Context, subject model.Subject, incidents []model.Incident) (*model.Report, error)
	InstitutionReport(ctx context.Context, incidents []model.Incident) (*model.Report, error)
}
