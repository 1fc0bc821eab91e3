package usecase

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
)

// newValidator returns a validator that reports fields by their column name
// and knows the season_id and team tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("season_id", func(fl validator.FieldLevel) bool {
		return season.ValidID(fl.Field().String())
	})
	_ = v.RegisterValidation("team", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		abbrev, ok := team.Canonical(raw)
		return ok && abbrev == raw
	})
	return v
}

// validationError converts the first failed constraint of a struct check.
func validationError(entity, key string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Entity: entity, Key: key, Field: "-", Constraint: "struct", Value: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{
		Entity:     entity,
		Key:        key,
		Field:      fe.Field(),
		Constraint: fe.Tag(),
		Value:      fe.Value(),
	}
}
