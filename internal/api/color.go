package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/colornode/internal/api/models"
	"github.com/smazurov/colornode/internal/color"
	"github.com/smazurov/colornode/internal/led"
)

func colorData(c color.RGB) models.ColorData {
	return models.ColorData{Color: c.Hex(), R: c.R, G: c.G, B: c.B}
}

// actuationError maps a failed apply to a 500. The colour is stored even so,
// which the message states.
func actuationError(c color.RGB, err error) error {
	var actErr *led.ActuationError
	if errors.As(err, &actErr) {
		return huma.Error500InternalServerError(
			"Colour "+c.Hex()+" stored but not applied: "+string(actErr.Mechanism)+" failed", err)
	}
	return huma.Error500InternalServerError("Colour "+c.Hex()+" stored but not applied", err)
}

func (s *Server) registerColorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-color",
		Method:      http.MethodGet,
		Path:        "/api/color",
		Summary:     "Get Colour",
		Description: "Get the stored colour. The LEDs may not show it if the last apply failed.",
		Tags:        []string{"color"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ColorResponse, error) {
		return &models.ColorResponse{Body: colorData(s.colors.Current())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-color",
		Method:      http.MethodPut,
		Path:        "/api/color",
		Summary:     "Set Colour",
		Description: "Store a colour and drive it to the addressable pixel and both PWM LEDs.",
		Tags:        []string{"color"},
		Security:    withAuth(),
		Errors:      []int{401, 422, 500},
	}, func(_ context.Context, input *models.SetColorRequest) (*models.ColorResponse, error) {
		c, err := color.ParseHex(input.Body.Color)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid colour", err)
		}

		applied, err := s.colors.ApplyAndStore(led.SourceAPI, &c)
		if err != nil {
			return nil, actuationError(applied, err)
		}
		return &models.ColorResponse{Body: colorData(applied)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-duties",
		Method:      http.MethodGet,
		Path:        "/api/leds/duties",
		Summary:     "Get PWM Duties",
		Description: "Get the raw duty values written by the last successful apply",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.DutiesResponse, error) {
		d, applied := s.colors.Duties()
		return &models.DutiesResponse{
			Body: models.DutiesData{
				Driver:  s.options.Driver,
				Applied: applied,
				Anode:   d.Anode,
				Cathode: d.Cathode,
			},
		}, nil
	})
}
