package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// SchoolRepository 学校（租户）数据访问接口
type SchoolRepository interface {
	Create(ctx context.Context, school *model.School) error
	GetByID(ctx context.Context, id string) (*model.School, error)
	List(ctx context.Context, offset, limit int) ([]model.School, int64, error)
	Update(ctx context.Context, school *model.School) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type schoolRepo struct {
	db *gorm.DB
}

// NewSchoolRepo 创建 SchoolRepository 实例
func NewSchoolRepo(db *gorm.DB) SchoolRepository {
	return &schoolRepo{db: db}
}

func (r *schoolRepo) Create(ctx context.Context, school *model.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepo) GetByID(ctx context.Context, id string) (*model.School, error) {
	var school model.School
	err := r.db.WithContext(ctx).
		Where("school_id = ?", id).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepo) List(ctx context.Context, offset, limit int) ([]model.School, int64, error) {
	var schools []model.School
	var total int64

	db := r.db.WithContext(ctx).Model(&model.School{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&schools).Error
	return schools, total, err
}

func (r *schoolRepo) Update(ctx context.Context, school *model.School) error {
	return r.db.WithContext(ctx).Save(school).Error
}

func (r *schoolRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.School{}).
		Where("school_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
