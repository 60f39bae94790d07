package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/service"
	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TestController struct {
	TestService    service.TestService
	ScoringService service.ScoringService
	ResultService  service.ResultService
	ReportService  service.ReportService
}

func NewTestController(
	testService service.TestService,
	scoringService service.ScoringService,
	resultService service.ResultService,
	reportService service.ReportService,
) *TestController {
	return &TestController{
		TestService:    testService,
		ScoringService: scoringService,
		ResultService:  resultService,
		ReportService:  reportService,
	}
}

func (tc *TestController) GetQuestions(c *gin.Context) {
	principal, _ := utilities.PrincipalFrom(c)
	shuffle, _ := strconv.ParseBool(c.Query("shuffle"))

	set, err := tc.TestService.AssembleQuestions(c.Request.Context(), service.AssembleRequest{
		UserID:   principal.SubjectID,
		Level:    c.Param("level"),
		Language: c.Query("lang"),
		Shuffle:  shuffle,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

type submitRequest struct {
	UserID  string `json:"userId"`
	Level   string `json:"level" binding:"required,level"`
	Answers []struct {
		QuestionID string `json:"questionId"`
		Answer     string `json:"answer"`
	} `json:"answers"`
	StartTime float64 `json:"startTime"`
}

func (tc *TestController) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	principal, _ := utilities.PrincipalFrom(c)
	if req.UserID != "" && req.UserID != principal.SubjectID.String() {
		respondError(c, service.ErrForbidden)
		return
	}

	answers := make([]model.AnswerRecord, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, model.AnswerRecord{QuestionID: a.QuestionID, Answer: a.Answer})
	}

	report, err := tc.ScoringService.Submit(c.Request.Context(), service.SubmitRequest{
		UserID:    principal.SubjectID,
		Level:     req.Level,
		Answers:   answers,
		StartTime: int64(req.StartTime),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Test submitted successfully",
		"result":  report,
	})
}

func (tc *TestController) GetResults(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		badRequest(c, "Invalid user id")
		return
	}
	principal, _ := utilities.PrincipalFrom(c)

	results, err := tc.ResultService.ResultsForUser(c.Request.Context(), principal, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (tc *TestController) DownloadReport(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		badRequest(c, "Invalid user id")
		return
	}
	principal, _ := utilities.PrincipalFrom(c)

	pdf, err := tc.ReportService.RenderResults(c.Request.Context(), principal, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.pdf", userID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (tc *TestController) GetSettings(c *gin.Context) {
	settings, err := tc.TestService.PublicSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
