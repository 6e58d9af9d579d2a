package dto

import (
	onboardingDomain "github.com/allisson/squareconnect/internal/onboarding/domain"
)

// BusinessTypeResponse is a catalogue business type.
type BusinessTypeResponse struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	Description       string   `json:"description"`
	AvailableServices []string `json:"availableServices"`
	RequiresSquare    bool     `json:"requiresSquare"`
}

// ServiceResponse is a catalogue service.
type ServiceResponse struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	RequiresSquare bool   `json:"requiresSquare"`
}

// CatalogResponse lists every business type and service.
type CatalogResponse struct {
	BusinessTypes []BusinessTypeResponse `json:"businessTypes"`
	Services      []ServiceResponse      `json:"services"`
}

// RequirementsResponse tells whether the selection needs Square.
type RequirementsResponse struct {
	RequiresSquare bool `json:"requiresSquare"`
}

// MapCatalogResponse builds the catalogue payload.
func MapCatalogResponse() CatalogResponse {
	types := onboardingDomain.BusinessTypes()
	resp := CatalogResponse{
		BusinessTypes: make([]BusinessTypeResponse, 0, len(types)),
	}
	for _, b := range types {
		available := make([]string, 0, len(b.AvailableServices))
		for _, s := range b.AvailableServices {
			available = append(available, string(s))
		}
		resp.BusinessTypes = append(resp.BusinessTypes, BusinessTypeResponse{
			ID:                string(b.Type),
			Label:             b.Label,
			Description:       b.Description,
			AvailableServices: available,
			RequiresSquare:    b.RequiresSquare,
		})
	}

	services := onboardingDomain.Services()
	resp.Services = make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		resp.Services = append(resp.Services, ServiceResponse{
			ID:             string(s.Type),
			Label:          s.Label,
			Description:    s.Description,
			Icon:           s.Icon,
			RequiresSquare: s.RequiresSquare,
		})
	}
	return resp
}
