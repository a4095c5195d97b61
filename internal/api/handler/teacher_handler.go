package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	pkgerrors "smart-campus/backend/pkg/errors"
	"smart-campus/backend/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// CreateTeacher 创建教师
// POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, teacher)
}

// GetTeacher 获取教师详情
// GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教师ID不能为空")
		return
	}

	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// ListTeachers 教师列表
// GET /api/v1/teachers?page=&page_size=
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	teachers, total, err := h.teacherSvc.List(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OKPage(c, teachers, total, req.GetPage(), req.GetPageSize())
}

// UpdateTeacher 更新教师
// PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教师ID不能为空")
		return
	}

	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), schoolID, id, &req, OperatorID(c))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher 删除教师
// DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "教师ID不能为空")
		return
	}

	if err := h.teacherSvc.Delete(c.Request.Context(), schoolID, id, OperatorID(c)); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 13002, "教师不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13003, "教师已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
