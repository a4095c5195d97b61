package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	pkgerrors "smart-campus/backend/pkg/errors"
	"smart-campus/backend/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc  service.TimetableService
	generationSvc service.GenerationService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService, generationSvc service.GenerationService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc, generationSvc: generationSvc}
}

// AddSlot 手动添加课表槽位
// POST /api/v1/timetable/slots
func (h *TimetableHandler) AddSlot(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	slot, err := h.timetableSvc.AddSlot(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, slot)
}

// RemoveSlot 删除课表槽位（幂等）
// DELETE /api/v1/timetable/slots/:id
func (h *TimetableHandler) RemoveSlot(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "槽位ID不能为空")
		return
	}

	if err := h.timetableSvc.RemoveSlot(c.Request.Context(), schoolID, id, OperatorID(c)); err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetTimetable 查询周课表（按天分组）
// GET /api/v1/timetable?class_id=&teacher_id=&day_of_week=
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.TimetableListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	timetable, err := h.timetableSvc.GetTimetable(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, timetable)
}

// Generate 批量生成课表
// POST /api/v1/timetable/generate
func (h *TimetableHandler) Generate(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	result, err := h.generationSvc.Generate(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// handleTimetableError 业务错误 → HTTP 响应映射
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	var conflictErr *service.SlotConflictError
	if errors.As(err, &conflictErr) {
		detail := dto.SlotConflictResponse{Reason: string(conflictErr.Reason)}
		if conflictErr.Conflicting != nil {
			detail.ConflictingSlot = &dto.SlotResponse{
				ID:         conflictErr.Conflicting.SlotID,
				RoomNumber: conflictErr.Conflicting.RoomNumber,
				DayOfWeek:  conflictErr.Conflicting.DayOfWeek,
				StartTime:  conflictErr.Conflicting.StartTime,
				EndTime:    conflictErr.Conflicting.EndTime,
				Source:     conflictErr.Conflicting.Source,
			}
		}
		response.ErrorWithData(c, 409, 16002, "课表槽位冲突", detail)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidSlotTime):
		response.BadRequest(c, 16003, err.Error())
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 16004, "班级不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 16005, "科目不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 16006, "教师不存在")
	case errors.Is(err, service.ErrLessonNotFound):
		response.NotFound(c, 16007, "课程单元不存在")
	case errors.Is(err, service.ErrLessonSubjectMismatch):
		response.BadRequest(c, 16008, "课程单元不属于所选科目")
	case errors.Is(err, service.ErrInvalidGenerationRequest):
		response.BadRequest(c, 17002, err.Error())
	case errors.Is(err, pkgerrors.ErrTenantLockBusy):
		response.Conflict(c, 16009, "该学校的课表正在被其他操作修改，请稍后重试")
	default:
		response.InternalError(c)
	}
}
