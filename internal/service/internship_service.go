package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/metrics"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
	pkgerrors "enib-internships/backend/pkg/errors"
)

// ── 实习模块业务错误 ──

var (
	ErrInternshipNotFound  = errors.New("实习不存在")
	ErrForbiddenTransition = errors.New("非法的状态流转")
	ErrUnknownTransition   = errors.New("未知的流转目标")
	ErrFileNotFound        = errors.New("附件不存在")
)

// ForbiddenTransitionError 流转前置条件不满足；Next 为当前状态唯一合法的下一状态。
// 状态正确但缺少前置关联时 Next 为空，Missing 给出缺少的关联。
type ForbiddenTransitionError struct {
	Target  model.InternshipState
	Current model.InternshipState
	Next    model.InternshipState
	Missing string
}

func (e *ForbiddenTransitionError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("无法流转到 %s：尚未关联 %s", e.Target, e.Missing)
	}
	if e.Next == "" {
		return fmt.Sprintf("无法流转到 %s：当前状态 %s 已是终态", e.Target, e.Current)
	}
	return fmt.Sprintf("无法从 %s 流转到 %s，下一步应为 %s", e.Current, e.Target, e.Next)
}

// Is 使 errors.Is(err, ErrForbiddenTransition) 成立
func (e *ForbiddenTransitionError) Is(target error) bool {
	return target == ErrForbiddenTransition
}

func forbidden(current, target model.InternshipState) *ForbiddenTransitionError {
	next, _ := model.NextState(current)
	return &ForbiddenTransitionError{Target: target, Current: current, Next: next}
}

// missingLink 状态满足但缺少关联
func missingLink(current, target model.InternshipState, link string) *ForbiddenTransitionError {
	return &ForbiddenTransitionError{Target: target, Current: current, Missing: link}
}

// requiredState 各目标状态要求的当前状态；archived 不受限
var requiredState = map[model.InternshipState]model.InternshipState{
	model.StateWaiting:           model.StatePublished,
	model.StatePublished:         model.StateWaiting,
	model.StateAttributedStudent: model.StatePublished,
	model.StateAvailableCampaign: model.StateAttributedStudent,
	model.StateAttributedMentor:  model.StateAvailableCampaign,
	model.StateRunning:           model.StateAttributedMentor,
	model.StateValidation:        model.StateRunning,
}

// InternshipService 实习业务接口
//
// 状态与关联字段只能通过 To* / Archive 修改；每次成功流转都会重新查询并返回完整实体。
// 被引用的学生、导师或批次不存在时不报错，原样返回当前实体。
type InternshipService interface {
	Create(ctx context.Context, req *dto.InternshipRequest) (*dto.InternshipResponse, error)
	GetByID(ctx context.Context, id string) (*dto.InternshipResponse, error)
	List(ctx context.Context, req *dto.InternshipListRequest) ([]dto.InternshipResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.InternshipRequest) (*dto.InternshipResponse, error)
	Delete(ctx context.Context, id string) error

	AddFile(ctx context.Context, id string, req *dto.FileRequest) (*dto.FileResponse, error)
	RemoveFile(ctx context.Context, id, fileID string) error

	ToWaiting(ctx context.Context, id string) (*dto.InternshipResponse, error)
	ToPublished(ctx context.Context, id string) (*dto.InternshipResponse, error)
	ToAttributedStudent(ctx context.Context, id, studentID string) (*dto.InternshipResponse, error)
	ToCampaignAvailable(ctx context.Context, id, campaignID string) (*dto.InternshipResponse, error)
	ToAttributedMentor(ctx context.Context, id, mentorID string) (*dto.InternshipResponse, error)
	ToRunning(ctx context.Context, id string, endAt *int64) (*dto.InternshipResponse, error)
	ToValidation(ctx context.Context, id string) (*dto.InternshipResponse, error)
	Archive(ctx context.Context, id, result string) (*dto.InternshipResponse, error)

	// Transition 按目标状态名分派到对应的 To* 方法
	Transition(ctx context.Context, id, target string, req *dto.TransitionRequest) (*dto.InternshipResponse, error)
}

type internshipService struct {
	repo    *repository.Repository
	stats   *statistics.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewInternshipService 创建 InternshipService 实例
func NewInternshipService(repo *repository.Repository, stats *statistics.Cache, m *metrics.Metrics, logger *zap.Logger) InternshipService {
	return &internshipService{repo: repo, stats: stats, metrics: m, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *internshipService) Create(ctx context.Context, req *dto.InternshipRequest) (*dto.InternshipResponse, error) {
	internship := &model.Internship{
		State:  model.StateWaiting,
		Result: model.ResultUnknown,
	}
	applyInternshipRequest(internship, req)

	if err := s.repo.Internship.Create(ctx, internship); err != nil {
		s.logger.Error("创建实习失败", zap.Error(err))
		return nil, err
	}
	s.stats.StateAdd(model.StateWaiting, 1)

	return s.GetByID(ctx, internship.InternshipID)
}

func (s *internshipService) GetByID(ctx context.Context, id string) (*dto.InternshipResponse, error) {
	internship, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInternshipResponse(internship), nil
}

func (s *internshipService) List(ctx context.Context, req *dto.InternshipListRequest) ([]dto.InternshipResponse, int64, error) {
	list, total, err := s.repo.Internship.List(ctx, repository.InternshipFilter{
		State:            model.InternshipState(req.State),
		InternshipTypeID: req.InternshipTypeID,
		CampaignID:       req.CampaignID,
		MentorID:         req.MentorID,
		StudentID:        req.StudentID,
		Page:             req.GetPage(),
		PageSize:         req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出实习失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.InternshipResponse, 0, len(list))
	for i := range list {
		result = append(result, *toInternshipResponse(&list[i]))
	}
	return result, total, nil
}

func (s *internshipService) Update(ctx context.Context, id string, req *dto.InternshipRequest) (*dto.InternshipResponse, error) {
	internship, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInternshipRequest(internship, req)

	if err := s.repo.Internship.UpdateDetails(ctx, internship); err != nil {
		s.logger.Error("更新实习失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *internshipService) Delete(ctx context.Context, id string) error {
	internship, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Internship.Delete(ctx, id); err != nil {
		s.logger.Error("删除实习失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.stats.StateRemove(internship.State, 1)
	return nil
}

func (s *internshipService) AddFile(ctx context.Context, id string, req *dto.FileRequest) (*dto.FileResponse, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	file := &model.File{InternshipID: id, Name: req.Name, Type: req.Type, Path: req.Path, Size: req.Size}
	if err := s.repo.File.Create(ctx, file); err != nil {
		s.logger.Error("登记附件失败", zap.String("internship_id", id), zap.Error(err))
		return nil, err
	}
	return toFileResponse(file), nil
}

func (s *internshipService) RemoveFile(ctx context.Context, id, fileID string) error {
	file, err := s.repo.File.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	if file.InternshipID != id {
		return ErrFileNotFound
	}
	return s.repo.File.Delete(ctx, fileID)
}

// ────────────────────── 状态机 ──────────────────────

// transitionPlan 一次流转要写入的列与统计副作用；nil 表示引用实体不存在，原样返回
type transitionPlan struct {
	fields     map[string]interface{}
	campaignID string
	after      func()
}

type planFunc func(ctx context.Context, cur *model.Internship) (*transitionPlan, error)

func (s *internshipService) ToWaiting(ctx context.Context, id string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateWaiting, func(context.Context, *model.Internship) (*transitionPlan, error) {
		return &transitionPlan{fields: map[string]interface{}{"publish_at": nil}}, nil
	})
}

func (s *internshipService) ToPublished(ctx context.Context, id string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StatePublished, func(context.Context, *model.Internship) (*transitionPlan, error) {
		return &transitionPlan{fields: map[string]interface{}{"publish_at": time.Now().UTC()}}, nil
	})
}

func (s *internshipService) ToAttributedStudent(ctx context.Context, id, studentID string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateAttributedStudent, func(ctx context.Context, cur *model.Internship) (*transitionPlan, error) {
		if !s.validRef("学生", studentID) {
			return nil, nil
		}
		student, err := s.repo.Student.GetByID(ctx, studentID)
		if err != nil {
			return nil, s.softNotFound(err, "学生", studentID)
		}
		return &transitionPlan{fields: map[string]interface{}{"student_id": student.StudentID}}, nil
	})
}

func (s *internshipService) ToCampaignAvailable(ctx context.Context, id, campaignID string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateAvailableCampaign, func(ctx context.Context, cur *model.Internship) (*transitionPlan, error) {
		if !s.validRef("批次", campaignID) {
			return nil, nil
		}
		campaign, err := s.repo.Campaign.GetByID(ctx, campaignID)
		if err != nil {
			return nil, s.softNotFound(err, "批次", campaignID)
		}
		fields := map[string]interface{}{"available_campaign_id": campaign.CampaignID}
		if cur.ValidatedCampaignID != nil {
			fields["validated_campaign_id"] = nil
		}
		// 发布批次时已关联并计入统计，只改状态
		if cur.AvailableCampaignID != nil && *cur.AvailableCampaignID == campaign.CampaignID {
			return &transitionPlan{fields: fields}, nil
		}
		plan := &transitionPlan{fields: fields, campaignID: campaign.CampaignID}
		if cur.StudentID != nil {
			plan.after = func() { s.stats.LinkStudent(campaign.CampaignID) }
		}
		return plan, nil
	})
}

func (s *internshipService) ToAttributedMentor(ctx context.Context, id, mentorID string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateAttributedMentor, func(ctx context.Context, cur *model.Internship) (*transitionPlan, error) {
		// 必须先以 available 身份挂在某个批次下
		if cur.AvailableCampaignID == nil {
			return nil, missingLink(cur.State, model.StateAttributedMentor, "available_campaign")
		}
		if !s.validRef("导师", mentorID) {
			return nil, nil
		}
		mentor, err := s.repo.Mentor.GetByID(ctx, mentorID)
		if err != nil {
			return nil, s.softNotFound(err, "导师", mentorID)
		}
		campaignID := *cur.AvailableCampaignID
		return &transitionPlan{
			fields: map[string]interface{}{
				"mentor_id":             mentor.MentorID,
				"validated_campaign_id": campaignID,
				"available_campaign_id": nil,
			},
			campaignID: campaignID,
		}, nil
	})
}

func (s *internshipService) ToRunning(ctx context.Context, id string, endAt *int64) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateRunning, func(context.Context, *model.Internship) (*transitionPlan, error) {
		fields := map[string]interface{}{"start_at": time.Now().UTC()}
		if endAt != nil {
			fields["end_at"] = time.UnixMilli(*endAt).UTC()
		}
		return &transitionPlan{fields: fields}, nil
	})
}

func (s *internshipService) ToValidation(ctx context.Context, id string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateValidation, func(context.Context, *model.Internship) (*transitionPlan, error) {
		return &transitionPlan{}, nil
	})
}

func (s *internshipService) Archive(ctx context.Context, id, result string) (*dto.InternshipResponse, error) {
	return s.transition(ctx, id, model.StateArchived, func(_ context.Context, cur *model.Internship) (*transitionPlan, error) {
		plan := &transitionPlan{fields: map[string]interface{}{"result": model.ParseResult(result)}}
		if cur.State == model.StateAvailableCampaign && cur.AvailableCampaignID != nil {
			plan.campaignID = *cur.AvailableCampaignID
		}
		return plan, nil
	})
}

func (s *internshipService) Transition(ctx context.Context, id, target string, req *dto.TransitionRequest) (*dto.InternshipResponse, error) {
	if req == nil {
		req = &dto.TransitionRequest{}
	}
	switch model.InternshipState(target) {
	case model.StateWaiting:
		return s.ToWaiting(ctx, id)
	case model.StatePublished:
		return s.ToPublished(ctx, id)
	case model.StateAttributedStudent:
		return s.ToAttributedStudent(ctx, id, req.StudentID)
	case model.StateAvailableCampaign:
		return s.ToCampaignAvailable(ctx, id, req.CampaignID)
	case model.StateAttributedMentor:
		return s.ToAttributedMentor(ctx, id, req.MentorID)
	case model.StateRunning:
		return s.ToRunning(ctx, id, req.EndAt)
	case model.StateValidation:
		return s.ToValidation(ctx, id)
	case model.StateArchived:
		return s.Archive(ctx, id, req.Result)
	default:
		return nil, ErrUnknownTransition
	}
}

// transition 校验前置状态 → 生成写入计划 → 以当前状态为条件原子写入 → 更新统计 → 重新查询
func (s *internshipService) transition(ctx context.Context, id string, target model.InternshipState, plan planFunc) (resp *dto.InternshipResponse, err error) {
	ctx, span := tracer.Start(ctx, "internship.transition", trace.WithAttributes(
		attribute.String("internship.id", id),
		attribute.String("internship.target", string(target)),
	))
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrForbiddenTransition):
			outcome = "forbidden"
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.ObserveTransition(string(target), outcome)
		span.End()
	}()

	cur, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if required, guarded := requiredState[target]; guarded && cur.State != required {
		return nil, forbidden(cur.State, target)
	}

	p, err := plan(ctx, cur)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return toInternshipResponse(cur), nil
	}

	if err := s.repo.Internship.Transition(ctx, id, cur.State, target, p.fields); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			// 并发流转抢先修改了状态，以最新状态报告
			latest, lerr := s.load(ctx, id)
			if lerr != nil {
				return nil, lerr
			}
			return nil, forbidden(latest.State, target)
		}
		s.logger.Error("写入实习状态失败",
			zap.String("id", id),
			zap.String("from", string(cur.State)),
			zap.String("to", string(target)),
			zap.Error(err),
		)
		return nil, err
	}

	s.stats.StateChange(target, cur.State, p.campaignID)
	if p.after != nil {
		p.after()
	}

	return s.GetByID(ctx, id)
}

// validRef 引用 ID 为空或不是 UUID 时视同实体不存在，不发起查询
func (s *internshipService) validRef(kind, id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		s.logger.Warn("流转引用的 ID 无效，保持原状态", zap.String("kind", kind), zap.String("id", id))
		return false
	}
	return true
}

// softNotFound 引用实体不存在时返回 nil（不流转），其余错误原样返回
func (s *internshipService) softNotFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("流转引用的实体不存在，保持原状态", zap.String("kind", kind), zap.String("id", id))
		return nil
	}
	s.logger.Error("查询流转引用实体失败", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
	return err
}

func (s *internshipService) load(ctx context.Context, id string) (*model.Internship, error) {
	internship, err := s.repo.Internship.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInternshipNotFound
		}
		s.logger.Error("查询实习失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return internship, nil
}

func applyInternshipRequest(i *model.Internship, req *dto.InternshipRequest) {
	i.Subject = req.Subject
	i.Description = req.Description
	i.Country = req.Country
	if i.Country == "" {
		i.Country = "France"
	}
	i.City = req.City
	i.PostalCode = req.PostalCode
	i.Address = req.Address
	i.Additional = req.Additional
	i.IsInternational = req.IsInternational
	i.BusinessID = req.BusinessID
	i.InternshipTypeID = req.InternshipTypeID
}
