package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"smart-campus/backend/internal/repository"
	"smart-campus/backend/pkg/response"
)

// SchoolIDKey 租户 ID 在 gin.Context 中的键
const SchoolIDKey = "school_id"

// Tenant 租户上下文中间件
// 从请求头 X-School-ID 读取租户标识，校验学校存在且处于激活状态，
// 注入到 gin.Context 供下游使用。租户范围内的所有路由都必须挂载本中间件
func Tenant(schoolRepo repository.SchoolRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		schoolID := c.GetHeader("X-School-ID")
		if schoolID == "" {
			response.BadRequest(c, 10006, "缺少 X-School-ID 请求头")
			c.Abort()
			return
		}
		if _, err := uuid.Parse(schoolID); err != nil {
			response.BadRequest(c, 10006, "X-School-ID 格式不合法")
			c.Abort()
			return
		}

		school, err := schoolRepo.GetByID(c.Request.Context(), schoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, 10007, "学校不存在")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}
		if !school.IsActive {
			response.Error(c, 403, 10008, "学校已停用")
			c.Abort()
			return
		}

		c.Set(SchoolIDKey, schoolID)
		c.Next()
	}
}
