// Package domain holds the onboarding catalogue: the business and service
// types a store can pick and which of them need a Square connection.
package domain

import (
	"github.com/allisson/squareconnect/internal/errors"
)

// BusinessType identifies the kind of store being onboarded.
type BusinessType string

const (
	BusinessBeautyAesthetic        BusinessType = "beauty_aesthetic"
	BusinessSalon                  BusinessType = "salon"
	BusinessMassageCenter          BusinessType = "massage_center"
	BusinessCafeRestaurantTakeaway BusinessType = "cafe_restaurant_takeaway"
	BusinessOther                  BusinessType = "other"
)

// ServiceType identifies a product feature a store can enable.
type ServiceType string

const (
	ServiceSocialMediaBooking   ServiceType = "social_media_booking"
	ServiceSocialMediaOrdering  ServiceType = "social_media_ordering"
	ServiceTableBooking         ServiceType = "table_booking"
	ServiceTakeawayOrders       ServiceType = "takeaway_orders"
	ServiceAICallAgent          ServiceType = "ai_call_agent"
	ServiceSocialMediaMarketing ServiceType = "social_media_marketing"
)

var (
	// ErrUnknownBusinessType indicates a business type outside the catalogue.
	ErrUnknownBusinessType = errors.Wrap(errors.ErrInvalidInput, "unknown business type")

	// ErrUnknownService indicates a service type outside the catalogue.
	ErrUnknownService = errors.Wrap(errors.ErrInvalidInput, "unknown service type")
)

// BusinessTypeInfo describes a business type.
type BusinessTypeInfo struct {
	Type              BusinessType
	Label             string
	Description       string
	AvailableServices []ServiceType
	RequiresSquare    bool
}

// ServiceInfo describes a service type.
type ServiceInfo struct {
	Type           ServiceType
	Label          string
	Description    string
	Icon           string
	RequiresSquare bool
}

var businessTypes = []BusinessTypeInfo{
	{
		Type:              BusinessBeautyAesthetic,
		Label:             "Beauty & Aesthetic",
		Description:       "Beauty salons, aesthetic clinics, and beauty services",
		AvailableServices: []ServiceType{ServiceSocialMediaBooking, ServiceAICallAgent, ServiceSocialMediaMarketing},
		RequiresSquare:    true,
	},
	{
		Type:              BusinessSalon,
		Label:             "Salon",
		Description:       "Hair salons, nail salons, and beauty salons",
		AvailableServices: []ServiceType{ServiceSocialMediaBooking, ServiceAICallAgent, ServiceSocialMediaMarketing},
		RequiresSquare:    true,
	},
	{
		Type:              BusinessMassageCenter,
		Label:             "Massage Center",
		Description:       "Massage therapy, spa services, and wellness centers",
		AvailableServices: []ServiceType{ServiceSocialMediaBooking, ServiceAICallAgent, ServiceSocialMediaMarketing},
		RequiresSquare:    true,
	},
	{
		Type:        BusinessCafeRestaurantTakeaway,
		Label:       "Cafe / Restaurant / Takeaway",
		Description: "Food service businesses, restaurants, and cafes",
		AvailableServices: []ServiceType{
			ServiceSocialMediaOrdering,
			ServiceTableBooking,
			ServiceTakeawayOrders,
			ServiceAICallAgent,
			ServiceSocialMediaMarketing,
		},
		RequiresSquare: false,
	},
	{
		Type:              BusinessOther,
		Label:             "Other Business Type",
		Description:       "Custom business setup - contact us for details",
		AvailableServices: []ServiceType{},
		RequiresSquare:    false,
	},
}

var services = []ServiceInfo{
	{
		Type:           ServiceSocialMediaBooking,
		Label:          "Social Media Appointment Booking",
		Description:    "Accept appointments through social media chat",
		Icon:           "💬",
		RequiresSquare: true,
	},
	{
		Type:           ServiceSocialMediaOrdering,
		Label:          "Social Media Food Ordering",
		Description:    "Accept food orders through social media chat",
		Icon:           "🍽️",
		RequiresSquare: true,
	},
	{
		Type:           ServiceTableBooking,
		Label:          "Table Reservation System",
		Description:    "Manage table bookings and reservations",
		Icon:           "🪑",
		RequiresSquare: false,
	},
	{
		Type:           ServiceTakeawayOrders,
		Label:          "Takeaway Order Management",
		Description:    "Handle takeaway and delivery orders",
		Icon:           "📦",
		RequiresSquare: true,
	},
	{
		Type:           ServiceAICallAgent,
		Label:          "AI Call Agent",
		Description:    "AI agent handles phone calls for bookings and orders",
		Icon:           "📞",
		RequiresSquare: false,
	},
	{
		Type:           ServiceSocialMediaMarketing,
		Label:          "Social Media Marketing Agent",
		Description:    "AI-powered marketing content creation and planning",
		Icon:           "📱",
		RequiresSquare: false,
	},
}

// BusinessTypes returns the catalogue's business types in display order.
func BusinessTypes() []BusinessTypeInfo {
	out := make([]BusinessTypeInfo, len(businessTypes))
	copy(out, businessTypes)
	return out
}

// Services returns the catalogue's services in display order.
func Services() []ServiceInfo {
	out := make([]ServiceInfo, len(services))
	copy(out, services)
	return out
}

// LookupBusinessType finds a business type by id.
func LookupBusinessType(t BusinessType) (BusinessTypeInfo, error) {
	for _, b := range businessTypes {
		if b.Type == t {
			return b, nil
		}
	}
	return BusinessTypeInfo{}, ErrUnknownBusinessType
}

// LookupService finds a service by id.
func LookupService(t ServiceType) (ServiceInfo, error) {
	for _, s := range services {
		if s.Type == t {
			return s, nil
		}
	}
	return ServiceInfo{}, ErrUnknownService
}

// RequiresSquare reports whether the business type or any selected service
// needs a Square connection. An empty business type is allowed.
func RequiresSquare(business BusinessType, selected []ServiceType) (bool, error) {
	required := false
	if business != "" {
		info, err := LookupBusinessType(business)
		if err != nil {
			return false, err
		}
		required = info.RequiresSquare
	}

	for _, s := range selected {
		info, err := LookupService(s)
		if err != nil {
			return false, err
		}
		required = required || info.RequiresSquare
	}
	return required, nil
}
