package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// LessonRepository 课程单元数据访问接口
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, schoolID, id string) (*model.Lesson, error)
	List(ctx context.Context, schoolID, subjectID string, offset, limit int) ([]model.Lesson, int64, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	Delete(ctx context.Context, schoolID, id string, deletedBy string) error
}

type lessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo 创建 LessonRepository 实例
func NewLessonRepo(db *gorm.DB) LessonRepository {
	return &lessonRepo{db: db}
}

func (r *lessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, schoolID, id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("school_id = ? AND lesson_id = ?", schoolID, id).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepo) List(ctx context.Context, schoolID, subjectID string, offset, limit int) ([]model.Lesson, int64, error) {
	var lessons []model.Lesson
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Lesson{}).
		Where("school_id = ?", schoolID)
	if subjectID != "" {
		db = db.Where("subject_id = ?", subjectID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Subject").
		Offset(offset).Limit(limit).
		Order("sequence ASC, created_at ASC").
		Find(&lessons).Error
	return lessons, total, err
}

func (r *lessonRepo) Update(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepo) Delete(ctx context.Context, schoolID, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Lesson{}).
		Where("school_id = ? AND lesson_id = ?", schoolID, id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
