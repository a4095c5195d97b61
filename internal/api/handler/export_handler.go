package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportClassExcel 导出班级课表为 Excel
// GET /api/v1/export/timetable/excel?class_id=xxx
func (h *ExportHandler) ExportClassExcel(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	classID := c.Query("class_id")
	if classID == "" {
		response.BadRequest(c, 18001, "class_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportClassExcel(c.Request.Context(), schoolID, classID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportClassICS 导出班级课表为 iCalendar 订阅
// GET /api/v1/export/timetable/ics?class_id=xxx
func (h *ExportHandler) ExportClassICS(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}

	classID := c.Query("class_id")
	if classID == "" {
		response.BadRequest(c, 18001, "class_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportClassICS(c.Request.Context(), schoolID, classID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeICS, filename, buf.Bytes())
}

// writeDownload 设置下载响应头并写入文件内容
func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 18002, "班级不存在")
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 18003, "该班级暂无课表")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
