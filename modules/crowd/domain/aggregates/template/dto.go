package template

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/taskpool/pkg/constants"
)

type CreateDTO struct {
	Name               string `json:"name" validate:"required"`
	Body               string `json:"body" validate:"required"`
	DefaultAssignments int    `json:"default_assignments" validate:"omitempty,min=1"`
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	return validateDTO(d)
}

func (d *CreateDTO) ToEntity() Template {
	assignments := d.DefaultAssignments
	if assignments == 0 {
		assignments = 1
	}
	return New(d.Name, d.Body, assignments)
}

type UpdateDTO struct {
	Name               string `json:"name" validate:"required"`
	Body               string `json:"body" validate:"required"`
	DefaultAssignments int    `json:"default_assignments" validate:"omitempty,min=1"`
}

func (d *UpdateDTO) Ok() (map[string]string, bool) {
	return validateDTO(d)
}

func (d *UpdateDTO) Apply(entity Template) Template {
	entity = entity.WithName(d.Name).WithBody(d.Body)
	if d.DefaultAssignments > 0 {
		entity = entity.WithDefaultAssignments(d.DefaultAssignments)
	}
	return entity
}

func validateDTO(dto interface{}) (map[string]string, bool) {
	errorMessages := map[string]string{}
	err := constants.Validate.Struct(dto)
	if err == nil {
		return errorMessages, true
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorMessages["_"] = err.Error()
		return errorMessages, false
	}
	for _, fieldErr := range validationErrors {
		errorMessages[fieldErr.Field()] = fmt.Sprintf(
			"field %q failed validation on rule %q", fieldErr.Field(), fieldErr.Tag(),
		)
	}
	return errorMessages, false
}
