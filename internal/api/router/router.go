package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"coursepath/config"
	"coursepath/internal/api/handler"
	"coursepath/internal/api/middleware"
	"coursepath/pkg/jwt"
	"coursepath/pkg/redis"
)

// 角色
const (
	roleStudent = "student"
	roleAdvisor = "advisor"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Trace.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)
	// 写操作仅限学生本人，审核仅限导师（指定关系由服务层校验）；管理员只读
	studentWrite := []gin.HandlerFunc{middleware.RoleAuth(roleStudent), limit}
	review := []gin.HandlerFunc{middleware.RoleAuth(roleAdvisor), limit}

	// ── API v1（均需认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		v1.POST("/prerequisites/resolve", h.Prerequisite.Resolve)

		// 导师待审队列
		v1.GET("/advisors/me/approvals", middleware.RoleAuth(roleAdvisor), h.Plan.ListPendingApprovals)

		// 学生范围：学生只能访问本人
		students := v1.Group("/students/:id")
		students.Use(middleware.StudentScope("id"))
		{
			students.GET("/prerequisites/:course_id", h.Prerequisite.CheckForStudent)
			students.GET("/audit", h.Audit.RunAudit)

			students.GET("/drafts", h.Plan.ListDrafts)
			students.POST("/drafts", append(studentWrite, h.Plan.CreateDraft)...)

			draft := students.Group("/drafts/:draft_id")
			{
				draft.PUT("/default", append(studentWrite, h.Plan.SetDefaultDraft)...)
				draft.GET("/plan", h.Plan.GetPlan)
				draft.POST("/validate", append(studentWrite, h.Plan.ValidatePlan)...)

				// 课程增删移
				draft.POST("/courses", append(studentWrite, h.Plan.AddCourse)...)
				draft.DELETE("/courses/:course_id", append(studentWrite, h.Plan.RemoveCourse)...)
				draft.PUT("/courses/:course_id/move", append(studentWrite, h.Plan.MoveCourse)...)

				// 学期流转
				sem := draft.Group("/semesters/:n")
				{
					sem.POST("/submit", append(studentWrite, h.Plan.Submit)...)
					sem.POST("/revise", append(studentWrite, h.Plan.Revise)...)
					sem.POST("/approve", append(review, h.Plan.Approve)...)
					sem.POST("/reject", append(review, h.Plan.Reject)...)
				}

				// 自动填充
				draft.GET("/autofill", h.AutoFill.Preview)
				draft.POST("/autofill/apply", append(studentWrite, h.AutoFill.Apply)...)

				// 导出
				draft.GET("/export.xlsx", h.Export.ExportXLSX)
				draft.GET("/export.ics", h.Export.ExportICS)
			}
		}
	}

	return r
}
