package controller

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/service"
	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		FullName    string      `json:"full_name"`
		PhoneNumber string      `json:"phone_number"`
		Age         interface{} `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	age, ageSet := parseAge(req.Age)
	user, token, err := ac.AuthService.Register(c.Request.Context(), service.RegisterInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Age:         age,
		AgeSet:      ageSet,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, token, err := ac.AuthService.Login(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":           user.ID,
			"phone_number": user.PhoneNumber,
			"age":          user.Age,
		},
		"token": token,
	})
}

func (ac *AuthController) AdminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	_, token, err := ac.AuthService.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

// Me returns the caller's record with its role.
func (ac *AuthController) Me(c *gin.Context) {
	principal, _ := utilities.PrincipalFrom(c)
	identity, err := ac.AuthService.CurrentIdentity(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	switch v := identity.(type) {
	case *model.User:
		c.JSON(http.StatusOK, gin.H{
			"id":           v.ID,
			"full_name":    v.FullName,
			"phone_number": v.PhoneNumber,
			"age":          v.Age,
			"created_at":   v.CreatedAt,
			"updated_at":   v.UpdatedAt,
			"role":         v.Role(),
		})
	case *model.Admin:
		c.JSON(http.StatusOK, gin.H{
			"id":         v.ID,
			"email":      v.Email,
			"created_at": v.CreatedAt,
			"updated_at": v.UpdatedAt,
			"role":       v.Role(),
		})
	default:
		respondError(c, service.ErrInvalidToken)
	}
}

// parseAge accepts a JSON number or a numeric string. A missing or empty
// value is reported as not set; anything unparsable as 0.
func parseAge(v interface{}) (int, bool) {
	switch age := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(age) || age < 0 || age > math.MaxInt32 {
			return 0, true
		}
		return int(age), true
	case string:
		s := strings.TrimSpace(age)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, true
		}
		return n, true
	}
	return 0, true
}
