package handler

import (
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	InternshipType *InternshipTypeHandler
	Business       *BusinessHandler
	Student        *StudentHandler
	Mentor         *MentorHandler
	Internship     *InternshipHandler
	Campaign       *CampaignHandler
	Proposition    *PropositionHandler
	Statistics     *StatisticsHandler
	Export         *ExportHandler
	Progress       *ProgressHandler
}

// NewHandler 创建 Handler 聚合；hub 为 nil 时 WebSocket 端点返回 503
func NewHandler(svc *service.Service, hub *progress.Hub) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		InternshipType: NewInternshipTypeHandler(svc.InternshipType),
		Business:       NewBusinessHandler(svc.Business),
		Student:        NewStudentHandler(svc.Student),
		Mentor:         NewMentorHandler(svc.Mentor),
		Internship:     NewInternshipHandler(svc.Internship),
		Campaign:       NewCampaignHandler(svc.Campaign),
		Proposition:    NewPropositionHandler(svc.Proposition),
		Statistics:     NewStatisticsHandler(svc.Statistics),
		Export:         NewExportHandler(svc.Export),
		Progress:       NewProgressHandler(hub),
	}
}
