package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"okurmen-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionController struct {
	QuestionService service.QuestionService
	MaxImageBytes   int64
}

func NewQuestionController(questionService service.QuestionService, maxImageBytes int64) *QuestionController {
	if maxImageBytes <= 0 {
		maxImageBytes = service.DefaultMaxImageBytes
	}
	return &QuestionController{QuestionService: questionService, MaxImageBytes: maxImageBytes}
}

func (qc *QuestionController) List(c *gin.Context) {
	f := service.QuestionFilter{
		Level:  c.Query("level"),
		Type:   c.Query("type"),
		Search: c.Query("q"),
	}
	if v, ok := c.GetQuery("active"); ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "Invalid active flag")
			return
		}
		f.Active = &active
	}

	questions, err := qc.QuestionService.ListQuestions(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (qc *QuestionController) Create(c *gin.Context) {
	in, ok := qc.readInput(c)
	if !ok {
		return
	}
	q, err := qc.QuestionService.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Question created successfully",
		"question": q,
	})
}

func (qc *QuestionController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid question ID: "+c.Param("id"))
		return
	}
	in, ok := qc.readInput(c)
	if !ok {
		return
	}
	q, err := qc.QuestionService.UpdateQuestion(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Question updated successfully",
		"question": q,
	})
}

func (qc *QuestionController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.NotFound("Question"))
		return
	}
	if err := qc.QuestionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Question deleted successfully",
		"deletedId": id,
	})
}

// Image streams a question image. It is public so that <img> tags work
// without a token.
func (qc *QuestionController) Image(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.NotFound("Question"))
		return
	}
	img, err := qc.QuestionService.GetImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename*=UTF-8''"+escapeFilename(img.Filename))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

type questionJSON struct {
	Level         string          `json:"level" binding:"omitempty,level"`
	Type          string          `json:"type" binding:"omitempty,qtype"`
	QuestionRU    string          `json:"question_ru"`
	QuestionKG    string          `json:"question_kg"`
	OptionsRU     json.RawMessage `json:"options_ru"`
	OptionsKG     json.RawMessage `json:"options_kg"`
	CorrectAnswer string          `json:"correct_answer"`
	IsActive      *bool           `json:"is_active"`
}

// readInput accepts JSON or a multipart form with an optional "image" file.
// It writes the error response itself and reports false on failure.
func (qc *QuestionController) readInput(c *gin.Context) (service.QuestionInput, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req questionJSON
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindingMessage(err))
			return service.QuestionInput{}, false
		}
		return service.QuestionInput{
			Level:         req.Level,
			Type:          req.Type,
			QuestionRU:    req.QuestionRU,
			QuestionKG:    req.QuestionKG,
			OptionsRU:     parseOptions(req.OptionsRU),
			OptionsKG:     parseOptions(req.OptionsKG),
			CorrectAnswer: req.CorrectAnswer,
			IsActive:      req.IsActive,
		}, true
	}

	in := service.QuestionInput{
		Level:         c.PostForm("level"),
		Type:          c.PostForm("type"),
		QuestionRU:    c.PostForm("question_ru"),
		QuestionKG:    c.PostForm("question_kg"),
		CorrectAnswer: c.PostForm("correct_answer"),
	}
	if v, ok := c.GetPostForm("options_ru"); ok {
		in.OptionsRU = formOptions(v)
	}
	if v, ok := c.GetPostForm("options_kg"); ok {
		in.OptionsKG = formOptions(v)
	}
	if v, ok := c.GetPostForm("is_active"); ok && v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "Invalid is_active flag")
			return service.QuestionInput{}, false
		}
		in.IsActive = &active
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, true
	case err != nil:
		badRequest(c, "Invalid image upload")
		return service.QuestionInput{}, false
	}
	if fh.Size > qc.MaxImageBytes {
		badRequest(c, "Image exceeds "+strconv.FormatInt(qc.MaxImageBytes, 10)+" bytes")
		return service.QuestionInput{}, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Invalid image upload")
		return service.QuestionInput{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, qc.MaxImageBytes+1))
	if err != nil {
		badRequest(c, "Invalid image upload")
		return service.QuestionInput{}, false
	}
	in.Image = &service.ImageUpload{Filename: fh.Filename, Data: data}
	return in, true
}

// parseOptions accepts a JSON array or a string holding a JSON array. An
// absent value yields nil; an unparsable one an empty list.
func parseOptions(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(raw, &opts); err == nil {
		return opts
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return []string{}
	}
	if strings.TrimSpace(encoded) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &opts); err != nil {
		return []string{}
	}
	return opts
}

// formOptions parses a multipart options field holding a JSON array.
func formOptions(v string) []string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return []string{}
	}
	return parseOptions(encoded)
}

func escapeFilename(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
