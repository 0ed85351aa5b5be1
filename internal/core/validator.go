package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"envmonitor/internal/types"
)

// Validator wraps go-playground/validator with the envmonitor custom tags.
//
//	finite: a float field must not be NaN or ±Inf.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator and registers the custom tags. Field
// names in errors are reported by their JSON name.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		// Registration only fails for an empty tag or nil func.
		panic(fmt.Sprintf("register finite validation: %v", err))
	}

	return &Validator{validate: v, logger: logger}
}

func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// ValidateStruct validates s and returns an AppError with the given code
// naming every failing field. A nil return means s is valid.
func (v *Validator) ValidateStruct(s any, code types.ErrorCode, message string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewAppError(code, message, err)
	}

	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}

	if v.logger != nil {
		v.logger.Debug("struct validation failed", "fields", fields)
	}

	return types.NewAppError(code, message, err).WithDetails(map[string]any{"fields": fields})
}
