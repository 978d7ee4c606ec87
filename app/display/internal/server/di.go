package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/incident_radar/app/display/internal/data"
	"github.com/iWorld-y/incident_radar/app/display/internal/repo"
	"github.com/iWorld-y/incident_radar/app/display/internal/service"
	"github.com/iWorld-y/incident_radar/app/display/internal/usecase"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/engine"
)

// ProviderSet 是报告服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewReportEngine,
	wire.Bind(new(repo.ReportGenerator), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewReportRepo,

	// UseCase providers
	usecase.NewReportUseCase,

	// Service providers
	service.NewReportService,
)
