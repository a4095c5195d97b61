package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	pkgerrors "smart-campus/backend/pkg/errors"
	"smart-campus/backend/pkg/response"
)

// SubjectHandler 科目模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// CreateSubject 创建科目
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	subject, err := h.subjectSvc.Create(c.Request.Context(), schoolID, &req, OperatorID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.Created(c, subject)
}

// GetSubject 获取科目详情
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "科目ID不能为空")
		return
	}

	subject, err := h.subjectSvc.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// ListSubjects 科目列表（不分页，按名称排序）
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	subjects, err := h.subjectSvc.List(c.Request.Context(), schoolID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// UpdateSubject 更新科目
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "科目ID不能为空")
		return
	}

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	subject, err := h.subjectSvc.Update(c.Request.Context(), schoolID, id, &req, OperatorID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// DeleteSubject 删除科目
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "科目ID不能为空")
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), schoolID, id, OperatorID(c)); err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 14002, "科目不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14003, "科目已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
