package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/constants"
)

type CreateDTO struct {
	Title           string      `json:"title" validate:"required"`
	Description     string      `json:"description"`
	BusinessAreaIDs []uuid.UUID `json:"business_area_ids"`
	LocationIDs     []uuid.UUID `json:"location_ids"`
	OwnerIDs        []uint      `json:"owner_ids" validate:"min=1"`
	TeamIDs         []uint      `json:"team_ids"`
	Confidential    bool        `json:"confidential"`
	StartsOn        time.Time   `json:"starts_on"`
	EndsOn          time.Time   `json:"ends_on"`
}

func (d *CreateDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	fieldErrors := map[string]string{}
	if err := constants.Validate.Struct(d); err != nil {
		for _, ve := range err.(validator.ValidationErrors) {
			fieldErrors[ve.Field()] = fmt.Sprintf("validation failed on %q", ve.Tag())
		}
	}
	if !d.EndsOn.IsZero() && !d.StartsOn.IsZero() && d.EndsOn.Before(d.StartsOn) {
		fieldErrors["EndsOn"] = "timeframe ends before it starts"
	}
	return fieldErrors, len(fieldErrors) == 0
}

func (d *CreateDTO) ToEntity(tenantID uuid.UUID) Plan {
	return New(
		d.Title,
		WithTenantID(tenantID),
		WithDescription(d.Description),
		WithBusinessAreas(d.BusinessAreaIDs),
		WithLocations(d.LocationIDs),
		WithTeam(d.OwnerIDs, d.TeamIDs),
		WithConfidential(d.Confidential),
		WithTimeframe(d.StartsOn, d.EndsOn),
	)
}
