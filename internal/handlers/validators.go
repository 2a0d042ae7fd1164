package handlers

import (
	"reflect"
	"strings"
	"sync"

	"farmcloud/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const uaePhoneTag = "uae_phone"

var registerOnce sync.Once

// registerValidators teaches gin's validator the uae_phone tag and makes it report JSON field names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation(uaePhoneTag, func(fl validator.FieldLevel) bool {
			return models.ValidPhoneNumber(fl.Field().String())
		})
	})
}
