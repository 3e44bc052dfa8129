package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/metrics"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/notify"
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
	pkgerrors "enib-internships/backend/pkg/errors"
)

// ── 批次模块业务错误 ──

var (
	ErrCampaignNotFound        = errors.New("批次不存在")
	ErrCampaignCategoryMissing = errors.New("批次未设置实习类别，无法发布")
	ErrCampaignAlreadyLaunched = errors.New("批次已发布")
	ErrCampaignLaunchFailed    = errors.New("批次发布失败")
	ErrMentorNotFound          = errors.New("导师不存在")
)

// progressBase 批次发布进度事件的主题前缀
const progressBase = "campaign"

const defaultLaunchConcurrency = 16

// CampaignService 批次业务接口
type CampaignService interface {
	Create(ctx context.Context, req *dto.CampaignRequest) (*dto.CampaignResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CampaignResponse, error)
	List(ctx context.Context) ([]dto.CampaignResponse, error)
	Update(ctx context.Context, id string, req *dto.CampaignRequest) (*dto.CampaignResponse, error)
	Delete(ctx context.Context, id string) error

	LinkMentor(ctx context.Context, campaignID, mentorID string) error
	UnlinkMentor(ctx context.Context, campaignID, mentorID string) error
	ListMentors(ctx context.Context, campaignID string) ([]dto.MentorResponse, error)

	// Launch 将可用实习与全部导师关联到批次并通知导师；recipient 非空时推送进度
	Launch(ctx context.Context, id, recipient string) (*model.LaunchSummary, error)
}

type campaignService struct {
	cfg         *config.Config
	repo        *repository.Repository
	stats       *statistics.Cache
	progress    progress.Transport
	notifier    notify.Sender
	metrics     *metrics.Metrics
	logger      *zap.Logger
	concurrency int
}

// NewCampaignService 创建 CampaignService 实例
func NewCampaignService(
	cfg *config.Config,
	repo *repository.Repository,
	stats *statistics.Cache,
	transport progress.Transport,
	notifier notify.Sender,
	m *metrics.Metrics,
	logger *zap.Logger,
) CampaignService {
	concurrency := cfg.Feature.LaunchConcurrency
	if concurrency <= 0 {
		concurrency = defaultLaunchConcurrency
	}
	return &campaignService{
		cfg:         cfg,
		repo:        repo,
		stats:       stats,
		progress:    transport,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ────────────────────── CRUD ──────────────────────

func (s *campaignService) Create(ctx context.Context, req *dto.CampaignRequest) (*dto.CampaignResponse, error) {
	campaign := &model.Campaign{}
	applyCampaignRequest(campaign, req)

	if err := s.repo.Campaign.Create(ctx, campaign); err != nil {
		s.logger.Error("创建批次失败", zap.Error(err))
		return nil, err
	}
	s.stats.NewCampaign(campaign.CampaignID, statistics.CampaignSnapshot{})

	return s.GetByID(ctx, campaign.CampaignID)
}

func (s *campaignService) GetByID(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCampaignResponse(campaign), nil
}

func (s *campaignService) List(ctx context.Context) ([]dto.CampaignResponse, error) {
	list, err := s.repo.Campaign.List(ctx)
	if err != nil {
		s.logger.Error("列出批次失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CampaignResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCampaignResponse(&list[i]))
	}
	return result, nil
}

func (s *campaignService) Update(ctx context.Context, id string, req *dto.CampaignRequest) (*dto.CampaignResponse, error) {
	campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCampaignRequest(campaign, req)
	campaign.InternshipType = nil

	if err := s.repo.Campaign.Update(ctx, campaign); err != nil {
		s.logger.Error("更新批次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete 删除批次及其指导意向，并移除统计条目
func (s *campaignService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	removed, err := txRepo.Proposition.DeleteByCampaign(ctx, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除批次指导意向失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := txRepo.Campaign.Delete(ctx, id); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除批次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	for i := int64(0); i < removed; i++ {
		s.stats.RemoveProposition()
	}
	s.stats.RemoveCampaign(id)
	return nil
}

// ────────────────────── 导师关联 ──────────────────────

func (s *campaignService) LinkMentor(ctx context.Context, campaignID, mentorID string) error {
	if _, err := s.load(ctx, campaignID); err != nil {
		return err
	}
	if _, err := s.repo.Mentor.GetByID(ctx, mentorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMentorNotFound
		}
		return err
	}
	created, err := s.repo.Campaign.AddMentor(ctx, campaignID, mentorID)
	if err != nil {
		s.logger.Error("关联导师失败", zap.String("campaign_id", campaignID), zap.String("mentor_id", mentorID), zap.Error(err))
		return err
	}
	if created {
		s.stats.LinkMentor(campaignID)
	}
	return nil
}

func (s *campaignService) UnlinkMentor(ctx context.Context, campaignID, mentorID string) error {
	if _, err := s.load(ctx, campaignID); err != nil {
		return err
	}
	removed, err := s.repo.Campaign.RemoveMentor(ctx, campaignID, mentorID)
	if err != nil {
		s.logger.Error("解除导师关联失败", zap.String("campaign_id", campaignID), zap.String("mentor_id", mentorID), zap.Error(err))
		return err
	}
	if removed {
		s.stats.UnlinkMentor(campaignID)
	}
	return nil
}

func (s *campaignService) ListMentors(ctx context.Context, campaignID string) ([]dto.MentorResponse, error) {
	if _, err := s.load(ctx, campaignID); err != nil {
		return nil, err
	}
	mentors, err := s.repo.Campaign.ListMentors(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MentorResponse, 0, len(mentors))
	for i := range mentors {
		result = append(result, *toMentorResponse(&mentors[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// Launch — 批次发布
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 校验批次与类别，行锁内设置 launched_at（每个批次只能发布一次）
//  2. 查询可关联实习（N 个）与全部导师（M 个），推送 start{total: 2M+N}
//  3. 并发执行：每个实习关联到批次；每个导师关联到批次并发送通知，每完成一项推送 step
//  4. 成功：以本次结果替换统计条目，保存摘要，推送 end
//  5. 失败：推送 error，统计条目置空，清除 launched_at 以便重新发布；已完成的关联不回滚

func (s *campaignService) Launch(ctx context.Context, id, recipient string) (*model.LaunchSummary, error) {
	ctx, span := tracer.Start(ctx, "campaign.launch", trace.WithAttributes(attribute.String("campaign.id", id)))
	defer span.End()
	started := time.Now()

	campaign, err := s.load(ctx, id)
	if err != nil {
		s.metrics.ObserveLaunch("rejected", time.Since(started))
		return nil, err
	}
	if campaign.InternshipTypeID == nil {
		s.metrics.ObserveLaunch("rejected", time.Since(started))
		return nil, ErrCampaignCategoryMissing
	}
	if err := s.repo.Campaign.MarkLaunched(ctx, id, started.UTC()); err != nil {
		s.metrics.ObserveLaunch("rejected", time.Since(started))
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrCampaignAlreadyLaunched
		}
		s.logger.Error("设置批次发布标记失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 发布标记已落库，后续关联与补偿不随请求取消而中断
	ctx = context.WithoutCancel(ctx)

	ch := progress.NewChannel(s.progress, progressBase, recipient)
	summary, err := s.runLaunch(ctx, campaign, ch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failLaunch(ctx, campaign, ch, err)
		s.metrics.ObserveLaunch("failed", time.Since(started))
		return nil, fmt.Errorf("%w: %v", ErrCampaignLaunchFailed, err)
	}

	s.stats.NewCampaign(id, statistics.CampaignSnapshot{
		Internships: summary.Internships,
		Available:   summary.Internships,
		Mentors:     summary.Mentors,
		Students:    summary.Internships,
	})
	s.saveSummary(ctx, id, summary)
	ch.End()

	span.SetAttributes(
		attribute.Int("campaign.internships", summary.Internships),
		attribute.Int("campaign.mentors", summary.Mentors),
	)
	s.metrics.ObserveLaunch("ok", time.Since(started))
	s.logger.Info("批次发布完成",
		zap.String("id", id),
		zap.Int("internships", summary.Internships),
		zap.Int("mentors", summary.Mentors),
		zap.Int("emails", summary.Emails),
	)
	return summary, nil
}

func (s *campaignService) runLaunch(ctx context.Context, campaign *model.Campaign, ch *progress.Channel) (*model.LaunchSummary, error) {
	internships, err := s.repo.Internship.ListEligibleForCampaign(ctx, *campaign.InternshipTypeID)
	if err != nil {
		return nil, fmt.Errorf("查询可关联实习失败: %w", err)
	}
	mentors, err := s.repo.Mentor.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询导师失败: %w", err)
	}

	n, m := len(internships), len(mentors)
	ch.Start(2*m + n)

	sendEmails := !s.cfg.App.IsTest()
	var linked, emails atomic.Int64

	// 不使用 WithContext：单项失败不取消其他进行中的关联
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range internships {
		internship := &internships[i]
		g.Go(func() error {
			err := s.repo.Internship.LinkAvailableCampaign(ctx, internship.InternshipID, campaign.CampaignID)
			switch {
			case err == nil:
				linked.Add(1)
			case errors.Is(err, pkgerrors.ErrStateConflict):
				// 已被并发发布的其他批次占用
				s.logger.Warn("实习已关联其他批次，跳过", zap.String("internship_id", internship.InternshipID))
			default:
				return fmt.Errorf("关联实习 %s 失败: %w", internship.InternshipID, err)
			}
			ch.Step(internship.Subject)
			return nil
		})
	}

	for i := range mentors {
		mentor := &mentors[i]
		g.Go(func() error {
			if _, err := s.repo.Campaign.AddMentor(ctx, campaign.CampaignID, mentor.MentorID); err != nil {
				return fmt.Errorf("关联导师 %s 失败: %w", mentor.MentorID, err)
			}
			ch.Step(mentor.FullName())

			if !sendEmails {
				return nil
			}
			if err := s.notifier.SendCampaignCreated(ctx, mentor, campaign); err != nil {
				return fmt.Errorf("通知导师 %s 失败: %w", mentor.Email, err)
			}
			emails.Add(1)
			ch.Step(mentor.FullName())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.LaunchSummary{
		Succeeded:   true,
		Internships: int(linked.Load()),
		Mentors:     m,
		Emails:      int(emails.Load()),
		FinishedAt:  time.Now().UTC(),
	}, nil
}

// failLaunch 失败补偿：统计条目置空并清除发布标记
func (s *campaignService) failLaunch(ctx context.Context, campaign *model.Campaign, ch *progress.Channel, cause error) {
	s.logger.Error("批次发布失败", zap.String("id", campaign.CampaignID), zap.Error(cause))

	ch.Error(cause)
	s.stats.NewCampaign(campaign.CampaignID, statistics.CampaignSnapshot{})

	// 请求可能已被取消，补偿写入使用独立的 context
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.repo.Campaign.ClearLaunched(cctx, campaign.CampaignID); err != nil {
		s.logger.Error("清除批次发布标记失败", zap.String("id", campaign.CampaignID), zap.Error(err))
	}
	s.saveSummary(cctx, campaign.CampaignID, &model.LaunchSummary{
		Succeeded:  false,
		Error:      cause.Error(),
		FinishedAt: time.Now().UTC(),
	})
}

func (s *campaignService) saveSummary(ctx context.Context, id string, summary *model.LaunchSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		s.logger.Warn("序列化发布摘要失败", zap.Error(err))
		return
	}
	if err := s.repo.Campaign.SaveLaunchSummary(ctx, id, datatypes.JSON(raw)); err != nil {
		s.logger.Warn("保存发布摘要失败", zap.String("id", id), zap.Error(err))
	}
}

// ── 内部辅助方法 ──

func (s *campaignService) load(ctx context.Context, id string) (*model.Campaign, error) {
	campaign, err := s.repo.Campaign.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		s.logger.Error("查询批次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return campaign, nil
}

func applyCampaignRequest(c *model.Campaign, req *dto.CampaignRequest) {
	c.Name = req.Name
	c.Description = req.Description
	c.Semester = req.Semester
	c.MaxProposition = req.MaxProposition
	c.IsPublished = req.IsPublished
	c.StartAt = req.StartAt
	c.EndAt = req.EndAt
	c.InternshipTypeID = req.InternshipTypeID
}
