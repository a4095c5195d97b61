package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, schoolID, id string) (*model.Subject, error)
	List(ctx context.Context, schoolID string) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, schoolID, id string, deletedBy string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, schoolID, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND subject_id = ?", schoolID, id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context, schoolID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	oldVersion := subject.Version
	result := r.db.WithContext(ctx).
		Model(subject).
		Where("subject_id = ? AND version = ?", subject.SubjectID, oldVersion).
		Updates(map[string]interface{}{
			"name":       subject.Name,
			"code":       subject.Code,
			"updated_by": subject.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	subject.Version = oldVersion + 1
	return nil
}

func (r *subjectRepo) Delete(ctx context.Context, schoolID, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Where("school_id = ? AND subject_id = ?", schoolID, id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
