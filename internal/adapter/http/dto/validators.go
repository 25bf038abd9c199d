package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"reservation-sync/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations adds the custom tags used by the request DTOs.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("safe_id", validateSafeID)
	_ = v.RegisterValidation("provider", validateProvider)
	_ = v.RegisterValidation("sync_op", validateSyncOp)
	_ = v.RegisterValidation("sync_status", validateSyncStatus)
}

// validateSafeID allows alphanumeric, underscore, dash, dot, and colon.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

func validateProvider(fl validator.FieldLevel) bool {
	return domain.Provider(strings.ToLower(fl.Field().String())).IsValid()
}

func validateSyncOp(fl validator.FieldLevel) bool {
	return domain.SyncOperation(fl.Field().String()).IsValid()
}

func validateSyncStatus(fl validator.FieldLevel) bool {
	return domain.SyncStatus(fl.Field().String()).IsValid()
}

// SanitizeStruct trims whitespace and HTML-escapes every exported top-level
// string field (including *string) of a struct pointer. Nested structs such
// as credentials are left untouched.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
