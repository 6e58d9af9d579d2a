// Package dto provides data transfer objects for the onboarding endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	onboardingDomain "github.com/allisson/squareconnect/internal/onboarding/domain"
)

// RequirementsRequest is a business type plus the services picked for it.
type RequirementsRequest struct {
	BusinessType     string   `json:"businessType"`
	SelectedServices []string `json:"selectedServices"`
}

// Validate checks the selection against the catalogue.
func (r *RequirementsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BusinessType,
			validation.In(businessTypeIDs()...).Error("must be a known business type"),
		),
		validation.Field(&r.SelectedServices,
			validation.Required.Error("please select at least one service"),
			validation.Each(validation.In(serviceIDs()...).Error("must be a known service")),
		),
	)
}

// ToDomain converts the request into catalogue types.
func (r *RequirementsRequest) ToDomain() (onboardingDomain.BusinessType, []onboardingDomain.ServiceType) {
	selected := make([]onboardingDomain.ServiceType, 0, len(r.SelectedServices))
	for _, s := range r.SelectedServices {
		selected = append(selected, onboardingDomain.ServiceType(s))
	}
	return onboardingDomain.BusinessType(r.BusinessType), selected
}

func businessTypeIDs() []interface{} {
	types := onboardingDomain.BusinessTypes()
	ids := make([]interface{}, 0, len(types))
	for _, b := range types {
		ids = append(ids, string(b.Type))
	}
	return ids
}

func serviceIDs() []interface{} {
	services := onboardingDomain.Services()
	ids := make([]interface{}, 0, len(services))
	for _, s := range services {
		ids = append(ids, string(s.Type))
	}
	return ids
}
