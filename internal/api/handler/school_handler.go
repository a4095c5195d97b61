package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

// SchoolHandler 学校模块 HTTP 处理器
type SchoolHandler struct {
	schoolSvc service.SchoolService
}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler(schoolSvc service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// CreateSchool 创建学校
// POST /api/v1/schools
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	school, err := h.schoolSvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.Created(c, school)
}

// GetSchool 获取学校详情
// GET /api/v1/schools/:id
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}

	school, err := h.schoolSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// ListSchools 学校列表
// GET /api/v1/schools
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	schools, total, err := h.schoolSvc.List(c.Request.Context(), &page)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OKPage(c, schools, total, page.GetPage(), page.GetPageSize())
}

// UpdateSchool 更新学校
// PUT /api/v1/schools/:id
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}

	var req dto.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	school, err := h.schoolSvc.Update(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// DeleteSchool 删除学校
// DELETE /api/v1/schools/:id
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}

	if err := h.schoolSvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SchoolHandler) handleSchoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 11002, "学校不存在")
	default:
		response.InternalError(c)
	}
}
