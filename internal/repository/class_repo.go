package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, schoolID, id string) (*model.Class, error)
	List(ctx context.Context, schoolID string, gradeLevel *int, offset, limit int) ([]model.Class, int64, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, schoolID, id string, deletedBy string) error
}

// ClassSubjectRepository 班级科目配置数据访问接口
type ClassSubjectRepository interface {
	// ListByClass 按配置顺序（created_at, class_subject_id）返回班级科目
	ListByClass(ctx context.Context, schoolID, classID string) ([]model.ClassSubject, error)
	// Replace 整体替换班级的科目配置（事务内删旧插新）
	Replace(ctx context.Context, schoolID, classID string, subjects []model.ClassSubject) error
}

// ── Class Repository 实现 ──

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, schoolID, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Subjects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, class_subject_id ASC")
		}).
		Preload("Subjects.Subject").
		Preload("Subjects.Teacher").
		Where("school_id = ? AND class_id = ?", schoolID, id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context, schoolID string, gradeLevel *int, offset, limit int) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Class{}).
		Where("school_id = ?", schoolID)
	if gradeLevel != nil {
		db = db.Where("grade_level = ?", *gradeLevel)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("grade_level ASC, name ASC").
		Find(&classes).Error
	return classes, total, err
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	oldVersion := class.Version
	result := r.db.WithContext(ctx).
		Model(class).
		Where("class_id = ? AND version = ?", class.ClassID, oldVersion).
		Updates(map[string]interface{}{
			"name":        class.Name,
			"grade_level": class.GradeLevel,
			"homeroom":    class.Homeroom,
			"is_active":   class.IsActive,
			"updated_by":  class.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	class.Version = oldVersion + 1
	return nil
}

func (r *classRepo) Delete(ctx context.Context, schoolID, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("school_id = ? AND class_id = ?", schoolID, id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ── ClassSubject Repository 实现 ──

type classSubjectRepo struct {
	db *gorm.DB
}

// NewClassSubjectRepo 创建 ClassSubjectRepository 实例
func NewClassSubjectRepo(db *gorm.DB) ClassSubjectRepository {
	return &classSubjectRepo{db: db}
}

func (r *classSubjectRepo) ListByClass(ctx context.Context, schoolID, classID string) ([]model.ClassSubject, error) {
	var subjects []model.ClassSubject
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Teacher").
		Where("school_id = ? AND class_id = ?", schoolID, classID).
		Order("created_at ASC, class_subject_id ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *classSubjectRepo) Replace(ctx context.Context, schoolID, classID string, subjects []model.ClassSubject) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("school_id = ? AND class_id = ?", schoolID, classID).
			Delete(&model.ClassSubject{}).Error; err != nil {
			return err
		}
		if len(subjects) == 0 {
			return nil
		}
		return tx.Create(&subjects).Error
	})
}
