package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	pkgerrors "smart-campus/backend/pkg/errors"
	"smart-campus/backend/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// CreateClass 创建班级
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// GetClass 获取班级详情（含科目配置）
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "班级ID不能为空")
		return
	}

	class, err := h.classSvc.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// ListClasses 班级列表
// GET /api/v1/classes?grade_level=&page=&page_size=
func (h *ClassHandler) ListClasses(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	classes, total, err := h.classSvc.List(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OKPage(c, classes, total, req.GetPage(), req.GetPageSize())
}

// UpdateClass 更新班级
// PUT /api/v1/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "班级ID不能为空")
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), schoolID, id, &req, OperatorID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// DeleteClass 删除班级
// DELETE /api/v1/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "班级ID不能为空")
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), schoolID, id, OperatorID(c)); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// SetSubjects 设置班级科目配置（整体替换）
// PUT /api/v1/classes/:id/subjects
func (h *ClassHandler) SetSubjects(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "班级ID不能为空")
		return
	}

	var req dto.SetClassSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	class, err := h.classSvc.SetSubjects(c.Request.Context(), schoolID, id, &req, OperatorID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12002, "班级不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12004, "教师不存在")
	case errors.Is(err, service.ErrDuplicateSubject):
		response.BadRequest(c, 12005, "班级科目配置中存在重复科目")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12006, "班级已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
