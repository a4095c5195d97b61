package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// SlotFilter 课表槽位查询条件
type SlotFilter struct {
	ClassID   string
	TeacherID string
	DayOfWeek *int
}

// SlotRepository 课表槽位数据访问接口
// 槽位只增删，不更新
type SlotRepository interface {
	Create(ctx context.Context, slot *model.TimetableSlot) error
	BatchCreate(ctx context.Context, slots []model.TimetableSlot) error
	GetByID(ctx context.Context, schoolID, id string) (*model.TimetableSlot, error)
	List(ctx context.Context, schoolID string, filter SlotFilter) ([]model.TimetableSlot, error)
	// ListByDay 返回某天的全部槽位（冲突检测快照，不做 class/teacher 预过滤）
	ListByDay(ctx context.Context, schoolID string, dayOfWeek int) ([]model.TimetableSlot, error)
	// Delete 按 ID 删除；记录不存在时不报错（幂等）
	Delete(ctx context.Context, schoolID, id string) error
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo 创建 SlotRepository 实例
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, slot *model.TimetableSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepo) BatchCreate(ctx context.Context, slots []model.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *slotRepo) GetByID(ctx context.Context, schoolID, id string) (*model.TimetableSlot, error) {
	var slot model.TimetableSlot
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Subject").
		Preload("Teacher").
		Preload("Lesson").
		Where("school_id = ? AND slot_id = ?", schoolID, id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) List(ctx context.Context, schoolID string, filter SlotFilter) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	db := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID)

	if filter.ClassID != "" {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.DayOfWeek != nil {
		db = db.Where("day_of_week = ?", *filter.DayOfWeek)
	}

	err := db.Preload("Class").
		Preload("Subject").
		Preload("Teacher").
		Preload("Lesson").
		Order("day_of_week ASC, start_time ASC, class_id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListByDay(ctx context.Context, schoolID string, dayOfWeek int) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND day_of_week = ?", schoolID, dayOfWeek).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) Delete(ctx context.Context, schoolID, id string) error {
	return r.db.WithContext(ctx).
		Where("school_id = ? AND slot_id = ?", schoolID, id).
		Delete(&model.TimetableSlot{}).Error
}
