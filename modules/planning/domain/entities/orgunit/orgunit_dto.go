package orgunit

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/constants"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

type CreateDTO struct {
	Name      string     `json:"name" validate:"required"`
	Dimension string     `json:"dimension" validate:"required"`
	ParentID  *uuid.UUID `json:"parent_id"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Dimension = strings.TrimSpace(d.Dimension)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	fieldErrors := map[string]string{}
	if err := constants.Validate.Struct(d); err != nil {
		for _, ve := range err.(validator.ValidationErrors) {
			fieldErrors[ve.Field()] = fmt.Sprintf("validation failed on %q", ve.Tag())
		}
	}
	switch hierarchy.Dimension(d.Dimension) {
	case hierarchy.DimensionBusinessArea, hierarchy.DimensionLocation:
	default:
		if _, ok := fieldErrors["Dimension"]; !ok {
			fieldErrors["Dimension"] = fmt.Sprintf("unknown dimension %q", d.Dimension)
		}
	}
	return fieldErrors, len(fieldErrors) == 0
}

func (d *CreateDTO) ToEntity(tenantID uuid.UUID) OrgUnit {
	return New(tenantID, hierarchy.Dimension(d.Dimension), d.Name, d.ParentID)
}
