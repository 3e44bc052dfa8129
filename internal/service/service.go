package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/metrics"
	"enib-internships/backend/internal/notify"
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
	"enib-internships/backend/pkg/cas"
	"enib-internships/backend/pkg/jwt"
)

var tracer = otel.Tracer("enib-internships/service")

// TicketValidator CAS 票据校验，由 pkg/cas.Client 实现
type TicketValidator interface {
	LoginURL() string
	Validate(ctx context.Context, ticket string) (*cas.Principal, error)
}

// TokenBlacklist 会话注销，由 pkg/redis.Client 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Deps 构造 Service 聚合所需的依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	Stats     *statistics.Cache
	Progress  progress.Transport
	Notifier  notify.Sender
	Metrics   *metrics.Metrics
	JWT       *jwt.Manager
	CAS       TicketValidator
	Blacklist TokenBlacklist
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	InternshipType InternshipTypeService
	Business       BusinessService
	Student        StudentService
	Mentor         MentorService
	Campaign       CampaignService
	Internship     InternshipService
	Proposition    PropositionService
	Statistics     StatisticsService
	Export         ExportService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	if d.Progress == nil {
		d.Progress = progress.Noop{}
	}
	if d.Stats == nil {
		d.Stats = statistics.NewCache()
	}
	return &Service{
		Auth:           NewAuthService(d.Config, d.Repo, d.JWT, d.CAS, d.Blacklist, d.Logger),
		InternshipType: NewInternshipTypeService(d.Repo, d.Logger),
		Business:       NewBusinessService(d.Repo, d.Logger),
		Student:        NewStudentService(d.Repo, d.Stats, d.Logger),
		Mentor:         NewMentorService(d.Repo, d.Stats, d.Logger),
		Campaign:       NewCampaignService(d.Config, d.Repo, d.Stats, d.Progress, d.Notifier, d.Metrics, d.Logger),
		Internship:     NewInternshipService(d.Repo, d.Stats, d.Metrics, d.Logger),
		Proposition:    NewPropositionService(d.Repo, d.Stats, d.Logger),
		Statistics:     NewStatisticsService(d.Repo, d.Stats, d.Logger),
		Export:         NewExportService(d.Repo, d.Logger),
	}
}
