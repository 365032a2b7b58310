package user

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/constants"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

type CreateDTO struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required"`
	UILanguage string `json:"ui_language"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Role = strings.TrimSpace(d.Role)
	if d.UILanguage == "" {
		d.UILanguage = string(UILanguageEN)
	}
}

// Ok validates the DTO and returns per-field messages on failure.
func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	fieldErrors := map[string]string{}
	if err := constants.Validate.Struct(d); err != nil {
		for _, ve := range err.(validator.ValidationErrors) {
			fieldErrors[ve.Field()] = fmt.Sprintf("validation failed on %q", ve.Tag())
		}
	}
	if _, ok := fieldErrors["Role"]; !ok && !hierarchy.Role(d.Role).IsValid() {
		fieldErrors["Role"] = fmt.Sprintf("unknown role %q", d.Role)
	}
	if !UILanguage(d.UILanguage).IsValid() {
		fieldErrors["UILanguage"] = fmt.Sprintf("unknown language %q", d.UILanguage)
	}
	return fieldErrors, len(fieldErrors) == 0
}

// ToEntity builds the aggregate for the given tenant.
func (d *CreateDTO) ToEntity(tenantID uuid.UUID) User {
	return New(
		d.Email,
		hierarchy.Role(d.Role),
		WithTenantID(tenantID),
		WithName(d.FirstName, d.LastName),
		WithUILanguage(UILanguage(d.UILanguage)),
	)
}
