package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/pkg/redis"
)

// ── 课表模块业务错误 ──

var (
	ErrSlotNotFound          = errors.New("课表槽位不存在")
	ErrClassNotFound         = errors.New("班级不存在")
	ErrSubjectNotFound       = errors.New("科目不存在")
	ErrTeacherNotFound       = errors.New("教师不存在")
	ErrLessonNotFound        = errors.New("课程单元不存在")
	ErrLessonSubjectMismatch = errors.New("课程单元不属于所选科目")
	ErrInvalidSlotTime       = errors.New("槽位时间不合法")
)

// SlotConflictError 添加槽位时检测到冲突
// 携带冲突原因与冲突方槽位，供接口层返回 409 详情
type SlotConflictError struct {
	Reason      ConflictReason
	Conflicting *model.TimetableSlot
}

func (e *SlotConflictError) Error() string {
	return "课表槽位冲突: " + string(e.Reason)
}

// TimetableService 课表业务接口
type TimetableService interface {
	AddSlot(ctx context.Context, schoolID string, req *dto.AddSlotRequest, operatorID string) (*dto.SlotResponse, error)
	// RemoveSlot 删除槽位；槽位不存在时静默成功（幂等）
	RemoveSlot(ctx context.Context, schoolID, slotID, operatorID string) error
	GetTimetable(ctx context.Context, schoolID string, req *dto.TimetableListRequest) (*dto.TimetableResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	locker *tenantLocker
	rdb    *redis.Client // 可为 nil
	logger *zap.Logger
}

// NewTimetableService 创建课表服务
func NewTimetableService(repo *repository.Repository, locker *tenantLocker, rdb *redis.Client, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, locker: locker, rdb: rdb, logger: logger}
}

func (s *timetableService) AddSlot(ctx context.Context, schoolID string, req *dto.AddSlotRequest, operatorID string) (*dto.SlotResponse, error) {
	if err := validateClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlotTime, err)
	}

	// 引用校验全部在加锁前完成，缩短锁持有时间
	if _, err := s.repo.Class.GetByID(ctx, schoolID, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("查询班级失败: %w", err)
	}
	if _, err := s.repo.Subject.GetByID(ctx, schoolID, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	if req.TeacherID != nil {
		if _, err := s.repo.Teacher.GetByID(ctx, schoolID, *req.TeacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeacherNotFound
			}
			return nil, fmt.Errorf("查询教师失败: %w", err)
		}
	}
	if req.LessonID != nil {
		lesson, err := s.repo.Lesson.GetByID(ctx, schoolID, *req.LessonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLessonNotFound
			}
			return nil, fmt.Errorf("查询课程单元失败: %w", err)
		}
		if lesson.SubjectID != req.SubjectID {
			return nil, ErrLessonSubjectMismatch
		}
	}

	unlock, err := s.locker.Lock(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 冲突检测基于持锁后的当天快照
	existing, err := s.repo.Slot.ListByDay(ctx, schoolID, req.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("查询当天课表失败: %w", err)
	}

	candidate := &model.TimetableSlot{
		SchoolID:   schoolID,
		ClassID:    req.ClassID,
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		LessonID:   req.LessonID,
		RoomNumber: req.RoomNumber,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Source:     model.SlotSourceManual,
	}
	if operatorID != "" {
		candidate.CreatedBy = &operatorID
	}

	if conflict := CheckSlotConflict(candidate, existing); conflict != nil {
		return nil, &SlotConflictError{Reason: conflict.Reason, Conflicting: conflict.Slot}
	}

	if err := s.repo.Slot.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("保存课表槽位失败: %w", err)
	}

	s.invalidateCache(ctx, schoolID)

	s.logger.Info("手动添加课表槽位",
		zap.String("school_id", schoolID),
		zap.String("slot_id", candidate.SlotID),
		zap.String("class_id", candidate.ClassID),
		zap.Int("day_of_week", candidate.DayOfWeek),
		zap.String("operator", operatorID))

	// 重新加载带关联的完整记录用于响应
	saved, err := s.repo.Slot.GetByID(ctx, schoolID, candidate.SlotID)
	if err != nil {
		return nil, fmt.Errorf("加载课表槽位失败: %w", err)
	}
	resp := toSlotResponse(saved)
	return &resp, nil
}

func (s *timetableService) RemoveSlot(ctx context.Context, schoolID, slotID, operatorID string) error {
	unlock, err := s.locker.Lock(ctx, schoolID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.Slot.Delete(ctx, schoolID, slotID); err != nil {
		return fmt.Errorf("删除课表槽位失败: %w", err)
	}

	s.invalidateCache(ctx, schoolID)

	s.logger.Info("删除课表槽位",
		zap.String("school_id", schoolID),
		zap.String("slot_id", slotID),
		zap.String("operator", operatorID))
	return nil
}

func (s *timetableService) GetTimetable(ctx context.Context, schoolID string, req *dto.TimetableListRequest) (*dto.TimetableResponse, error) {
	cacheKey := timetableCacheKey(req)

	var version int64
	if s.rdb != nil {
		v, err := s.rdb.TimetableVersion(ctx, schoolID)
		if err == nil {
			version = v
			if data, ok := s.rdb.GetTimetableCache(ctx, schoolID, version, cacheKey); ok {
				var cached dto.TimetableResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					return &cached, nil
				}
			}
		} else {
			s.logger.Warn("读取课表缓存版本失败", zap.Error(err))
			version = -1 // 版本不可知，跳过本次缓存写入
		}
	}

	slots, err := s.repo.Slot.List(ctx, schoolID, repository.SlotFilter{
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
		DayOfWeek: req.DayOfWeek,
	})
	if err != nil {
		return nil, fmt.Errorf("查询课表失败: %w", err)
	}

	resp := buildTimetableResponse(slots)

	if s.rdb != nil && version >= 0 {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.SetTimetableCache(ctx, schoolID, version, cacheKey, data); err != nil {
				s.logger.Warn("写入课表缓存失败", zap.Error(err))
			}
		}
	}

	return resp, nil
}

// invalidateCache 课表写操作后递增租户缓存版本
func (s *timetableService) invalidateCache(ctx context.Context, schoolID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.BumpTimetableVersion(ctx, schoolID); err != nil {
		s.logger.Warn("递增课表缓存版本失败",
			zap.String("school_id", schoolID), zap.Error(err))
	}
}

// timetableCacheKey 将查询条件规整为缓存键后缀
func timetableCacheKey(req *dto.TimetableListRequest) string {
	day := 0
	if req.DayOfWeek != nil {
		day = *req.DayOfWeek
	}
	return fmt.Sprintf("c=%s:t=%s:d=%d", req.ClassID, req.TeacherID, day)
}

// buildTimetableResponse 将槽位列表按天分组、天内按开始时间排序
func buildTimetableResponse(slots []model.TimetableSlot) *dto.TimetableResponse {
	byDay := make(map[int][]dto.SlotResponse)
	for i := range slots {
		r := toSlotResponse(&slots[i])
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	resp := &dto.TimetableResponse{Days: make([]dto.TimetableDayResponse, 0, len(days))}
	for _, d := range days {
		daySlots := byDay[d]
		sort.SliceStable(daySlots, func(i, j int) bool {
			return daySlots[i].StartTime < daySlots[j].StartTime
		})
		resp.Days = append(resp.Days, dto.TimetableDayResponse{DayOfWeek: d, Slots: daySlots})
	}
	return resp
}

// toSlotResponse 模型转响应 DTO
func toSlotResponse(slot *model.TimetableSlot) dto.SlotResponse {
	r := dto.SlotResponse{
		ID:         slot.SlotID,
		RoomNumber: slot.RoomNumber,
		DayOfWeek:  slot.DayOfWeek,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Source:     slot.Source,
		CreatedAt:  formatTime(slot.CreatedAt),
	}
	if slot.Class != nil {
		r.Class = &dto.ClassBrief{ID: slot.Class.ClassID, Name: slot.Class.Name}
	}
	if slot.Subject != nil {
		r.Subject = &dto.SubjectBrief{ID: slot.Subject.SubjectID, Name: slot.Subject.Name, Code: slot.Subject.Code}
	}
	if slot.Teacher != nil {
		r.Teacher = &dto.TeacherBrief{ID: slot.Teacher.TeacherID, Name: slot.Teacher.Name}
	}
	if slot.Lesson != nil {
		r.Lesson = &dto.LessonBrief{ID: slot.Lesson.LessonID, Title: slot.Lesson.Title}
	}
	return r
}
