package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/advisor"
	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/pkg/redis"
)

// ═══════════════════════════════════════════
// 批量排课
//
// 按请求逐班生成课表槽位：先向建议服务征询科目分配顺序，
// 失败则降级为本地轮转；冲突判定始终由本地引擎负责。
// 整个批次在租户排课锁内执行，单个班级失败不影响其他班级
// ═══════════════════════════════════════════

var (
	// ErrInvalidGenerationRequest 排课请求参数不合法
	ErrInvalidGenerationRequest = errors.New("排课请求不合法")
)

// 单节时长允许范围（分钟）
const (
	minSessionDuration = 30
	maxSessionDuration = 120
)

// GenerationService 批量排课业务接口
type GenerationService interface {
	Generate(ctx context.Context, schoolID string, req *dto.GenerateTimetableRequest, operatorID string) (*dto.GenerateTimetableResponse, error)
}

type generationService struct {
	repo    *repository.Repository
	adv     advisor.Advisor // 可为 nil（建议服务未启用）
	locker  *tenantLocker
	rdb     *redis.Client // 可为 nil
	logger  *zap.Logger
	timeout time.Duration // 单次建议调用的超时上限
}

// NewGenerationService 创建批量排课服务
func NewGenerationService(repo *repository.Repository, adv advisor.Advisor, locker *tenantLocker, rdb *redis.Client, logger *zap.Logger, advisorTimeout time.Duration) GenerationService {
	if advisorTimeout <= 0 {
		advisorTimeout = 10 * time.Second
	}
	return &generationService{
		repo:    repo,
		adv:     adv,
		locker:  locker,
		rdb:     rdb,
		logger:  logger,
		timeout: advisorTimeout,
	}
}

func (s *generationService) Generate(ctx context.Context, schoolID string, req *dto.GenerateTimetableRequest, operatorID string) (*dto.GenerateTimetableResponse, error) {
	days, sessions, err := validateGenerationRequest(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 持锁后取各天槽位快照；本批次已落库的槽位随后并入快照
	existingByDay := make(map[int][]model.TimetableSlot, len(days))
	for _, d := range days {
		slots, err := s.repo.Slot.ListByDay(ctx, schoolID, d)
		if err != nil {
			return nil, fmt.Errorf("查询当天课表失败: %w", err)
		}
		existingByDay[d] = slots
	}

	teacherFilter := make(map[string]bool, len(req.TeacherIDs))
	for _, id := range req.TeacherIDs {
		teacherFilter[id] = true
	}

	requested := len(days) * len(sessions)
	results := make([]dto.GenerationResult, 0, len(req.ClassIDs))
	anyCreated := false

	for _, classID := range req.ClassIDs {
		result := s.generateForClass(ctx, schoolID, classID, days, sessions, teacherFilter, existingByDay, operatorID)
		result.Requested = requested
		if result.CreatedSlots > 0 {
			anyCreated = true
		}
		results = append(results, result)
	}

	if anyCreated && s.rdb != nil {
		if err := s.rdb.BumpTimetableVersion(ctx, schoolID); err != nil {
			s.logger.Warn("递增课表缓存版本失败",
				zap.String("school_id", schoolID), zap.Error(err))
		}
	}

	s.logger.Info("批量排课完成",
		zap.String("school_id", schoolID),
		zap.Int("classes", len(req.ClassIDs)),
		zap.String("operator", operatorID))

	return &dto.GenerateTimetableResponse{Results: results}, nil
}

// generateForClass 为单个班级生成槽位
// 成功时将新建槽位并入 existingByDay，后续班级据此避让；
// 任何失败只影响当前班级的结果条目
func (s *generationService) generateForClass(
	ctx context.Context,
	schoolID, classID string,
	days []int,
	sessions [][2]string,
	teacherFilter map[string]bool,
	existingByDay map[int][]model.TimetableSlot,
	operatorID string,
) dto.GenerationResult {
	result := dto.GenerationResult{ClassID: classID}

	class, err := s.repo.Class.GetByID(ctx, schoolID, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Error = "班级不存在"
		} else {
			s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
			result.Error = "查询班级失败"
		}
		return result
	}
	result.ClassName = class.Name

	subjects, err := s.repo.ClassSubject.ListByClass(ctx, schoolID, classID)
	if err != nil {
		s.logger.Error("查询班级科目配置失败", zap.String("class_id", classID), zap.Error(err))
		result.Error = "查询班级科目配置失败"
		return result
	}
	if len(teacherFilter) > 0 {
		subjects = filterSubjectsByTeacher(subjects, teacherFilter)
	}
	if len(subjects) == 0 {
		result.Error = "班级没有可用的科目配置"
		return result
	}

	ordered := s.resolveSubjectOrder(ctx, class, subjects, days, len(days)*len(sessions), &result)

	// 逐槽位轮转分配，冲突即跳过该槽位
	planned := make([]model.TimetableSlot, 0, len(days)*len(sessions))
	round := 0
	for _, day := range days {
		for _, sess := range sessions {
			cs := ordered[round%len(ordered)]
			round++

			candidate := model.TimetableSlot{
				SchoolID:   schoolID,
				ClassID:    classID,
				SubjectID:  cs.SubjectID,
				TeacherID:  cs.TeacherID,
				RoomNumber: class.Homeroom,
				DayOfWeek:  day,
				StartTime:  sess[0],
				EndTime:    sess[1],
				Source:     model.SlotSourceGenerated,
			}
			if operatorID != "" {
				candidate.CreatedBy = &operatorID
			}

			if conflict := CheckSlotConflict(&candidate, existingByDay[day]); conflict != nil {
				continue
			}
			if conflict := CheckSlotConflict(&candidate, planned); conflict != nil {
				continue
			}
			planned = append(planned, candidate)
		}
	}

	if err := s.repo.Slot.BatchCreate(ctx, planned); err != nil {
		s.logger.Error("批量保存课表槽位失败",
			zap.String("class_id", classID), zap.Error(err))
		result.Error = "保存课表槽位失败"
		return result
	}

	// 落库成功后并入快照，后续班级的冲突检测可见
	for i := range planned {
		d := planned[i].DayOfWeek
		existingByDay[d] = append(existingByDay[d], planned[i])
	}

	result.Success = true
	result.CreatedSlots = len(planned)
	return result
}

// resolveSubjectOrder 确定科目分配顺序
// 建议服务可用且返回合法排序时采用其顺序；否则按配置顺序轮转。
// 建议中未提及的科目追加在末尾，引用未知科目的建议整体作废
func (s *generationService) resolveSubjectOrder(
	ctx context.Context,
	class *model.Class,
	subjects []model.ClassSubject,
	days []int,
	slotCount int,
	result *dto.GenerationResult,
) []model.ClassSubject {
	if s.adv == nil {
		return subjects
	}

	advCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	classCtx := advisor.ClassContext{
		SchoolID:   class.SchoolID,
		ClassID:    class.ClassID,
		ClassName:  class.Name,
		GradeLevel: class.GradeLevel,
		SlotCount:  slotCount,
		DaysOfWeek: days,
		Subjects:   make([]advisor.SubjectInfo, 0, len(subjects)),
	}
	for _, cs := range subjects {
		info := advisor.SubjectInfo{
			SubjectID:   cs.SubjectID,
			WeeklyHours: cs.WeeklyHours,
		}
		if cs.Subject != nil {
			info.SubjectName = cs.Subject.Name
		}
		if cs.Teacher != nil {
			info.TeacherName = cs.Teacher.Name
		}
		classCtx.Subjects = append(classCtx.Subjects, info)
	}

	suggestion, err := s.adv.SuggestDistribution(advCtx, classCtx)
	if err != nil {
		s.logger.Warn("建议服务调用失败，降级为本地轮转",
			zap.String("class_id", class.ClassID), zap.Error(err))
		return subjects
	}

	byID := make(map[string]model.ClassSubject, len(subjects))
	for _, cs := range subjects {
		byID[cs.SubjectID] = cs
	}

	ordered := make([]model.ClassSubject, 0, len(subjects))
	seen := make(map[string]bool, len(subjects))
	for _, id := range suggestion.SubjectOrder {
		cs, ok := byID[id]
		if !ok {
			s.logger.Warn("建议引用了未配置的科目，整体作废",
				zap.String("class_id", class.ClassID),
				zap.String("subject_id", id))
			return subjects
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, cs)
	}
	for _, cs := range subjects {
		if !seen[cs.SubjectID] {
			ordered = append(ordered, cs)
		}
	}

	result.Explanation = suggestion.Explanation
	result.Suggestions = suggestion.Suggestions
	return ordered
}

// filterSubjectsByTeacher 保留指定教师任教的科目配置
// 返回新切片，不改写仓储返回的底层数组
func filterSubjectsByTeacher(subjects []model.ClassSubject, teacherFilter map[string]bool) []model.ClassSubject {
	filtered := make([]model.ClassSubject, 0, len(subjects))
	for _, cs := range subjects {
		if cs.TeacherID != nil && teacherFilter[*cs.TeacherID] {
			filtered = append(filtered, cs)
		}
	}
	return filtered
}

// validateGenerationRequest 校验请求并展开（去重排序后的天列表, 每日节次区间列表）
func validateGenerationRequest(req *dto.GenerateTimetableRequest) ([]int, [][2]string, error) {
	if len(req.ClassIDs) == 0 {
		return nil, nil, fmt.Errorf("%w: 班级列表不能为空", ErrInvalidGenerationRequest)
	}
	if len(req.DaysOfWeek) == 0 {
		return nil, nil, fmt.Errorf("%w: 星期列表不能为空", ErrInvalidGenerationRequest)
	}
	if req.SessionDuration < minSessionDuration || req.SessionDuration > maxSessionDuration {
		return nil, nil, fmt.Errorf("%w: 单节时长须在 %d-%d 分钟之间",
			ErrInvalidGenerationRequest, minSessionDuration, maxSessionDuration)
	}
	start, err := parseClockMinutes(req.StartTime)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGenerationRequest, err)
	}
	end, err := parseClockMinutes(req.EndTime)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGenerationRequest, err)
	}
	if end-start < req.SessionDuration {
		return nil, nil, fmt.Errorf("%w: 每日时间窗不足一节课", ErrInvalidGenerationRequest)
	}

	seen := make(map[int]bool, len(req.DaysOfWeek))
	days := make([]int, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		if d < 1 || d > 7 {
			return nil, nil, fmt.Errorf("%w: 星期取值须在 1-7 之间", ErrInvalidGenerationRequest)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)

	sessions := make([][2]string, 0, (end-start)/req.SessionDuration)
	for t := start; t+req.SessionDuration <= end; t += req.SessionDuration {
		sessions = append(sessions, [2]string{
			formatClockMinutes(t),
			formatClockMinutes(t + req.SessionDuration),
		})
	}
	return days, sessions, nil
}

// formatClockMinutes 分钟数转回 "HH:MM"
func formatClockMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
