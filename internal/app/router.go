package app

import (
	"lingua_edu_backend/docs"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/middleware"
	"lingua_edu_backend/internal/model"

	"lingua_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录与开课时段可匿名浏览
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
		public.GET("/instructors", c.instructor.List)
		public.GET("/schedule/slots", middleware.TryAuthMiddleware(a.Config), c.schedule.ListUpcoming)
		public.GET("/placement/levels", c.placement.Levels)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 分级测试
	rg.POST("/placement/start", c.placement.Start)
	rg.POST("/placement/sessions/:id/answers", c.placement.SubmitAnswer)
	rg.GET("/placement/result", c.placement.MyResult)

	// 预约
	rg.POST("/bookings", c.booking.Create)
	rg.GET("/bookings", c.booking.MyBookings)
	rg.POST("/bookings/:id/cancel", c.booking.Cancel)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		// 1. 教师可参与的管理接口
		admin.GET("/groups/:id/bookings", middleware.RoleMiddleware(model.Admin, model.Instructor), c.booking.ListByGroup)
		admin.PUT("/bookings/:id/attendance", middleware.RoleMiddleware(model.Admin, model.Instructor), c.booking.MarkAttendance)

		// 2. 其他所有接口：仅限管理员访问
		adminOnly := admin.Group("/")
		adminOnly.Use(middleware.RoleMiddleware(model.Admin))
		{
			// 分级测试管理
			adminOnly.GET("/placement/results", c.placement.ListResults)
			adminOnly.POST("/placement/questions", c.placement.AddQuestion)
			adminOnly.DELETE("/placement/questions/:id", c.placement.DeleteQuestion)

			// 排期与座位管理
			adminOnly.POST("/schedule/slots", c.schedule.CreateSlot)
			adminOnly.PATCH("/schedule/slots/:id/active", c.schedule.SetSlotActive)
			adminOnly.POST("/schedule/slots/:id/groups", c.schedule.AddGroup)
			adminOnly.PATCH("/schedule/groups/:id/capacity", c.schedule.ResizeGroup)
			adminOnly.PUT("/schedule/groups/:id/instructor", c.schedule.AssignInstructor)
			adminOnly.POST("/schedule/groups/auto-assign", c.schedule.AutoAssign)
			adminOnly.POST("/schedule/moves", c.schedule.MoveSeat)

			// 预约管理
			adminOnly.POST("/bookings/:id/confirm", c.booking.Confirm)

			// 课程管理
			adminOnly.POST("/courses", c.course.CreateCourse)
			adminOnly.PUT("/courses/:id", c.course.UpdateCourse)
			adminOnly.POST("/courses/:id/packages", c.course.AddPackage)
			adminOnly.POST("/courses/cover", c.course.UploadCover)

			// 教师档案管理
			adminOnly.GET("/instructors/assignable", c.instructor.ListAssignable)
			adminOnly.POST("/instructors", c.instructor.Create)
			adminOnly.PUT("/instructors/:id", c.instructor.Update)
		}
	}
}
