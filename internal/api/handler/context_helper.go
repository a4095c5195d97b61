package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smart-campus/backend/internal/api/middleware"
	"smart-campus/backend/pkg/response"
)

// MustGetSchoolID 从 Gin 上下文中安全提取 school_id。
// 如果租户中间件未正确注入 school_id，返回 false 并写入 500 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSchoolID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.SchoolIDKey)
	if !exists {
		response.InternalError(c)
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.InternalError(c)
		return "", false
	}
	return s, true
}

// OperatorID 从请求头 X-Operator-ID 提取操作人标识（用于审计字段）
// 缺失或格式不合法时返回空串，不阻断请求
func OperatorID(c *gin.Context) string {
	id := c.GetHeader("X-Operator-ID")
	if id == "" {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
