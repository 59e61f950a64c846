// internal/app/features/organizations/handler.go
package organizations

import (
	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

// Handler is the feature-level entry point for Organizations.
type Handler struct {
	*shared.Env
}

// NewHandler constructs a new Organizations handler.
func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}

type brandingInput struct {
	DisplayName    string `json:"display_name" validate:"max=200" label:"Display name"`
	LogoURL        string `json:"logo_url" validate:"omitempty,httpurl,max=500" label:"Logo URL"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor" label:"Primary color"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor" label:"Secondary color"`
}

func (b *brandingInput) model() models.Branding {
	shared.Clean(&b.DisplayName)
	return models.Branding{
		DisplayName:    b.DisplayName,
		LogoURL:        b.LogoURL,
		PrimaryColor:   b.PrimaryColor,
		SecondaryColor: b.SecondaryColor,
	}
}
