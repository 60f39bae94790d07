package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"okurmen-backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidators adds the "level" and "qtype" tags to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
			return model.Level(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("qtype", func(fl validator.FieldLevel) bool {
			return model.QuestionType(fl.Field().String()).Valid()
		})
	})
}

// bindingMessage turns a binding error into a client message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "level":
		return "Invalid level: " + fmt.Sprint(fe.Value())
	case "qtype":
		return "Invalid type: " + fmt.Sprint(fe.Value())
	}
	return "Invalid value for " + fe.Field()
}
