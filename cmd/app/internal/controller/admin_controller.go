package controller

import (
	"net/http"

	"okurmen-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	DashboardService service.DashboardService
	UserService      service.UserService
	ResultService    service.ResultService
	SettingsService  service.SettingsService
}

func NewAdminController(
	dashboardService service.DashboardService,
	userService service.UserService,
	resultService service.ResultService,
	settingsService service.SettingsService,
) *AdminController {
	return &AdminController{
		DashboardService: dashboardService,
		UserService:      userService,
		ResultService:    resultService,
		SettingsService:  settingsService,
	}
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	data, err := ac.DashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (ac *AdminController) GetAllUsers(c *gin.Context) {
	users, err := ac.UserService.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// History serves both /history and /results: every result, expanded, with
// its taker.
func (ac *AdminController) History(c *gin.Context) {
	results, err := ac.ResultService.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (ac *AdminController) GetSettings(c *gin.Context) {
	rows, err := ac.SettingsService.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (ac *AdminController) UpdateSettings(c *gin.Context) {
	var updates []service.SettingsUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, "Settings must be an array")
		return
	}
	stored, err := ac.SettingsService.UpdateSettings(c.Request.Context(), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Test settings updated successfully",
		"settings": stored,
	})
}
