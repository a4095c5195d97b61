package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

// LessonHandler 课程单元模块 HTTP 处理器
type LessonHandler struct {
	lessonSvc service.LessonService
}

// NewLessonHandler 创建 LessonHandler
func NewLessonHandler(lessonSvc service.LessonService) *LessonHandler {
	return &LessonHandler{lessonSvc: lessonSvc}
}

// CreateLesson 创建课程单元
// POST /api/v1/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	lesson, err := h.lessonSvc.Create(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.Created(c, lesson)
}

// GetLesson 获取课程单元详情
// GET /api/v1/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "课程单元ID不能为空")
		return
	}

	lesson, err := h.lessonSvc.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, lesson)
}

// ListLessons 课程单元列表
// GET /api/v1/lessons?subject_id=&page=&page_size=
func (h *LessonHandler) ListLessons(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.LessonListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	lessons, total, err := h.lessonSvc.List(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OKPage(c, lessons, total, req.GetPage(), req.GetPageSize())
}

// UpdateLesson 更新课程单元
// PUT /api/v1/lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "课程单元ID不能为空")
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	lesson, err := h.lessonSvc.Update(c.Request.Context(), schoolID, id, &req, OperatorID(c))
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, lesson)
}

// DeleteLesson 删除课程单元
// DELETE /api/v1/lessons/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "课程单元ID不能为空")
		return
	}

	if err := h.lessonSvc.Delete(c.Request.Context(), schoolID, id, OperatorID(c)); err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *LessonHandler) handleLessonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		response.NotFound(c, 15002, "课程单元不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 15003, "科目不存在")
	default:
		response.InternalError(c)
	}
}
