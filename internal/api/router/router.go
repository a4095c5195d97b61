package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/api/handler"
	"smart-campus/backend/internal/api/middleware"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学校模块（租户管理入口，不需要 X-School-ID）
		schools := v1.Group("/schools")
		{
			schools.POST("", h.School.CreateSchool)
			schools.GET("", h.School.ListSchools)
			schools.GET("/:id", h.School.GetSchool)
			schools.PUT("/:id", h.School.UpdateSchool)
			schools.DELETE("/:id", h.School.DeleteSchool)
		}

		// 租户范围路由（X-School-ID 必填）
		tenant := v1.Group("")
		tenant.Use(middleware.Tenant(repo.School))
		{
			// 班级模块
			classes := tenant.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", h.Class.CreateClass)
				classes.PUT("/:id", h.Class.UpdateClass)
				classes.DELETE("/:id", h.Class.DeleteClass)
				classes.PUT("/:id/subjects", h.Class.SetSubjects)
			}

			// 教师模块
			teachers := tenant.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.POST("", h.Teacher.CreateTeacher)
				teachers.PUT("/:id", h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", h.Teacher.DeleteTeacher)
			}

			// 科目模块
			subjects := tenant.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", h.Subject.CreateSubject)
				subjects.PUT("/:id", h.Subject.UpdateSubject)
				subjects.DELETE("/:id", h.Subject.DeleteSubject)
			}

			// 课程单元模块
			lessons := tenant.Group("/lessons")
			{
				lessons.GET("", h.Lesson.ListLessons)
				lessons.GET("/:id", h.Lesson.GetLesson)
				lessons.POST("", h.Lesson.CreateLesson)
				lessons.PUT("/:id", h.Lesson.UpdateLesson)
				lessons.DELETE("/:id", h.Lesson.DeleteLesson)
			}

			// 课表模块
			timetable := tenant.Group("/timetable")
			{
				timetable.GET("", h.Timetable.GetTimetable)
				timetable.POST("/slots", h.Timetable.AddSlot)
				timetable.DELETE("/slots/:id", h.Timetable.RemoveSlot)
				// 批量生成开销大，单独限流
				timetable.POST("/generate",
					middleware.RateLimit(rdb, 5, time.Minute),
					h.Timetable.Generate)
			}

			// 导出模块
			export := tenant.Group("/export")
			{
				export.GET("/timetable/excel", h.Export.ExportClassExcel)
				export.GET("/timetable/ics", h.Export.ExportClassICS)
			}
		}
	}

	return r
}
