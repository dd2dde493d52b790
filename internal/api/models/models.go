// Package models holds request and response bodies of the HTTP API.
package models

import "github.com/smazurov/colornode/internal/version"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
	Driver  string `json:"driver" example:"periph" doc:"LED driver in use"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// Colour models
type ColorData struct {
	Color string `json:"color" example:"#ff0080" doc:"Colour as #rrggbb"`
	R     uint8  `json:"r" example:"255" doc:"Red, 0-255"`
	G     uint8  `json:"g" example:"0" doc:"Green, 0-255"`
	B     uint8  `json:"b" example:"128" doc:"Blue, 0-255"`
}

type ColorResponse struct {
	Body ColorData
}

type SetColorRequest struct {
	Body struct {
		Color string `json:"color" example:"#ff0080" pattern:"^#?[0-9a-fA-F]{6}$" doc:"Colour as #rrggbb; the leading # is optional"`
	}
}

// Duty models
type DutiesData struct {
	Driver  string    `json:"driver" example:"sim" doc:"LED driver in use"`
	Applied bool      `json:"applied" doc:"False until a colour reached the LEDs"`
	Anode   [3]uint32 `json:"anode" doc:"Anode (active-low) duties, red/green/blue"`
	Cathode [3]uint32 `json:"cathode" doc:"Cathode (active-high) duties, red/green/blue"`
}

type DutiesResponse struct {
	Body DutiesData
}
