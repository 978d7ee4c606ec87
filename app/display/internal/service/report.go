package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/incident_radar/app/display/internal/domain"
	"github.com/iWorld-y/incident_radar/app/display/internal/usecase"
)

const (
	OperationGenerateStudent     = "/incident_radar.v1.Report/GenerateStudent"
	OperationGenerateInstitution = "/incident_radar.v1.Report/GenerateInstitution"
	OperationExtract             = "/incident_radar.v1.Report/Extract"
	OperationGetReport           = "/incident_radar.v1.Report/GetReport"
)

type GenerateStudentReq struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

type GenerateInstitutionReq struct{}

type ExtractReq struct {
	Raw       string   `json:"raw"`
	Sections  []string `json:"sections"`
	Truncated bool     `json:"truncated"`
}

type GetReportReq struct {
	ID string `json:"id"`
}

// ReportReply 所有报告接口的统一返回
type ReportReply struct {
	Report *domain.Report `json:"report"`
}

type ReportService struct {
	uc  *usecase.ReportUseCase
	log *log.Helper
}

func NewReportService(uc *usecase.ReportUseCase, logger log.Logger) *ReportService {
	return &ReportService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

func (s *ReportService) GenerateStudent(ctx context.Context, req *GenerateStudentReq) (*ReportReply, error) {
	r, err := s.uc.GenerateStudent(ctx, req.StudentID, req.Name)
	if err != nil {
		return nil, err
	}
	return &ReportReply{Report: r}, nil
}

func (s *ReportService) GenerateInstitution(ctx context.Context, req *GenerateInstitutionReq) (*ReportReply, error) {
	r, err := s.uc.GenerateInstitution(ctx)
	if err != nil {
		return nil, err
	}
	return &ReportReply{Report: r}, nil
}

func (s *ReportService) Extract(ctx context.Context, req *ExtractReq) (*ReportReply, error) {
	r, err := s.uc.Extract(ctx, req.Raw, req.Sections, req.Truncated)
	if err != nil {
		return nil, err
	}
	return &ReportReply{Report: r}, nil
}

func (s *ReportService) GetReport(ctx context.Context, req *GetReportReq) (*ReportReply, error) {
	r, err := s.uc.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &ReportReply{Report: r}, nil
}

// RegisterReportHTTPServer 注册报告相关路由
func RegisterReportHTTPServer(s *http.Server, srv *ReportService) {
	r := s.Route("/")
	r.POST("/v1/reports/students/{id}", _Report_GenerateStudent0_HTTP_Handler(srv))
	r.POST("/v1/reports/institution", _Report_GenerateInstitution0_HTTP_Handler(srv))
	r.POST("/v1/reports/extract", _Report_Extract0_HTTP_Handler(srv))
	r.GET("/v1/reports/{id}", _Report_GetReport0_HTTP_Handler(srv))
}

func _Report_GenerateStudent0_HTTP_Handler(srv *ReportService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GenerateStudentReq
		if ctx.Request().ContentLength != 0 {
			if err := ctx.Bind(&in); err != nil {
				return err
			}
		}
		in.StudentID = ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationGenerateStudent)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GenerateStudent(ctx, req.(*GenerateStudentReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ReportReply))
	}
}

func _Report_GenerateInstitution0_HTTP_Handler(srv *ReportService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GenerateInstitutionReq
		http.SetOperation(ctx, OperationGenerateInstitution)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GenerateInstitution(ctx, req.(*GenerateInstitutionReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ReportReply))
	}
}

func _Report_Extract0_HTTP_Handler(srv *ReportService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ExtractReq
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationExtract)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Extract(ctx, req.(*ExtractReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ReportReply))
	}
}

func _Report_GetReport0_HTTP_Handler(srv *ReportService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := GetReportReq{ID: ctx.Vars().Get("id")}
		http.SetOperation(ctx, OperationGetReport)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetReport(ctx, req.(*GetReportReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ReportReply))
	}
}
