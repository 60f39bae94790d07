package controller

import (
	"okurmen-backend/internal/model"
	"okurmen-backend/internal/service"
	"okurmen-backend/pkg/middleware"
	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	User      service.UserService
	Test      service.TestService
	Scoring   service.ScoringService
	Result    service.ResultService
	Report    service.ReportService
	Question  service.QuestionService
	Settings  service.SettingsService
	Dashboard service.DashboardService

	Tokens        *utilities.TokenService
	LoginLimiter  *middleware.RateLimiter
	Health        *HealthController
	MaxImageBytes int64
}

func RegisterRoutes(r *gin.Engine, s Services) {
	registerValidators()

	authenticated := utilities.AuthMiddleware(s.Tokens)
	takersOnly := utilities.RequireRole(model.RoleUser, service.ErrAdminCannotTest.Message)
	adminsOnly := utilities.RequireRole(model.RoleAdmin, service.ErrForbidden.Message)

	r.GET("/health", s.Health.Health)

	api := r.Group("/api")
	api.GET("/test", s.Health.APIStatus)

	// Auth routes.
	authCtrl := NewAuthController(s.Auth)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		authRoutes.POST("/login", s.LoginLimiter.Middleware(), authCtrl.Login)
		authRoutes.GET("/me", authenticated, authCtrl.Me)
	}

	// Test routes.
	testCtrl := NewTestController(s.Test, s.Scoring, s.Result, s.Report)
	testRoutes := api.Group("/test")
	{
		testRoutes.GET("/settings", testCtrl.GetSettings)
		testRoutes.GET("/questions/:level", authenticated, takersOnly, testCtrl.GetQuestions)
		testRoutes.POST("/submit", authenticated, takersOnly, testCtrl.Submit)
		testRoutes.GET("/results/:userId", authenticated, testCtrl.GetResults)
		testRoutes.GET("/results/:userId/report", authenticated, testCtrl.DownloadReport)
	}

	// Question images are public so <img> tags can load them.
	questionCtrl := NewQuestionController(s.Question, s.MaxImageBytes)
	api.GET("/questions/:id/image", questionCtrl.Image)

	// Admin routes.
	adminCtrl := NewAdminController(s.Dashboard, s.User, s.Result, s.Settings)
	api.POST("/admin/login", s.LoginLimiter.Middleware(), authCtrl.AdminLogin)
	adminRoutes := api.Group("/admin", authenticated, adminsOnly)
	{
		adminRoutes.GET("/dashboard", adminCtrl.Dashboard)
		adminRoutes.GET("/users", adminCtrl.GetAllUsers)
		adminRoutes.GET("/history", adminCtrl.History)
		adminRoutes.GET("/results", adminCtrl.History)
		adminRoutes.GET("/settings", adminCtrl.GetSettings)
		adminRoutes.PUT("/settings", adminCtrl.UpdateSettings)

		adminRoutes.GET("/questions", questionCtrl.List)
		adminRoutes.POST("/questions", questionCtrl.Create)
		adminRoutes.PUT("/questions/:id", questionCtrl.Update)
		adminRoutes.DELETE("/questions/:id", questionCtrl.Delete)
	}
}
