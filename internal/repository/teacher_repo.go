package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, schoolID, id string) (*model.Teacher, error)
	List(ctx context.Context, schoolID string, offset, limit int) ([]model.Teacher, int64, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, schoolID, id string, deletedBy string) error
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, schoolID, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND teacher_id = ?", schoolID, id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, schoolID string, offset, limit int) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("school_id = ?", schoolID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&teachers).Error
	return teachers, total, err
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	oldVersion := teacher.Version
	result := r.db.WithContext(ctx).
		Model(teacher).
		Where("teacher_id = ? AND version = ?", teacher.TeacherID, oldVersion).
		Updates(map[string]interface{}{
			"name":       teacher.Name,
			"email":      teacher.Email,
			"is_active":  teacher.IsActive,
			"updated_by": teacher.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	teacher.Version = oldVersion + 1
	return nil
}

func (r *teacherRepo) Delete(ctx context.Context, schoolID, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("school_id = ? AND teacher_id = ?", schoolID, id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
