package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
	pkgerrors "enib-internships/backend/pkg/errors"
)

var (
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrStudentEmailTaken = errors.New("学生邮箱已被使用")
)

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.StudentRequest) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, semester string) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.StudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
}

type studentService struct {
	repo   *repository.Repository
	stats  *statistics.Cache
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, stats *statistics.Cache, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, stats: stats, logger: logger}
}

func (s *studentService) Create(ctx context.Context, req *dto.StudentRequest) (*dto.StudentResponse, error) {
	st := &model.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Semester:  req.Semester,
	}
	if err := s.repo.Student.Create(ctx, st); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrStudentEmailTaken
		}
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}
	s.stats.AddStudent()
	return toStudentResponse(st), nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(st), nil
}

func (s *studentService) List(ctx context.Context, semester string) ([]dto.StudentResponse, error) {
	list, err := s.repo.Student.List(ctx, semester)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toStudentResponse(&list[i]))
	}
	return result, nil
}

func (s *studentService) Update(ctx context.Context, id string, req *dto.StudentRequest) (*dto.StudentResponse, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	st.FirstName = req.FirstName
	st.LastName = req.LastName
	st.Email = strings.ToLower(req.Email)
	st.Semester = req.Semester
	if err := s.repo.Student.Update(ctx, st); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrStudentEmailTaken
		}
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(st), nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.stats.RemoveStudent()
	return nil
}

func (s *studentService) load(ctx context.Context, id string) (*model.Student, error) {
	st, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return st, nil
}
