package batch

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/taskpool/pkg/constants"
)

// CreateDTO carries a batch upload. Content is the raw file body and is
// deliberately outside validator's reach, decoding decides whether it is
// usable.
type CreateDTO struct {
	TemplateID         string `json:"template_id" validate:"required,uuid"`
	Name               string `json:"name" validate:"required"`
	Filename           string `json:"filename" validate:"required"`
	AssignmentsPerTask int    `json:"assignments_per_task" validate:"omitempty,min=1"`
	Content            []byte `json:"-"`
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	errorMessages := map[string]string{}
	err := constants.Validate.Struct(d)
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
