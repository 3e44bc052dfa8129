package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "enib-internships/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	InternshipType InternshipTypeRepository
	Business       BusinessRepository
	Student        StudentRepository
	Mentor         MentorRepository
	Campaign       CampaignRepository
	Internship     InternshipRepository
	File           FileRepository
	Proposition    PropositionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		InternshipType: NewInternshipTypeRepo(db),
		Business:       NewBusinessRepo(db),
		Student:        NewStudentRepo(db),
		Mentor:         NewMentorRepo(db),
		Campaign:       NewCampaignRepo(db),
		Internship:     NewInternshipRepo(db),
		File:           NewFileRepo(db),
		Proposition:    NewPropositionRepo(db),
	}
}

// BeginTx 开启事务；未绑定数据库（单元测试中的 mock 聚合）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// translate 将唯一约束冲突统一为 ErrDuplicate
func translate(err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicate
	}
	return err
}
