package domain

import (
	"encoding/json"
	"strings"
)

// Location is the subset of a Square location used for eligibility.
type Location struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MerchantID string `json:"merchant_id"`
	Status     string `json:"status"`
	MCC        string `json:"mcc"`
}

// LocationsPayload is the parsed /v2/locations response: SingleLocation or LocationList.
type LocationsPayload interface {
	// Primary returns the location whose category decides eligibility.
	Primary() (Location, bool)
}

// SingleLocation is a {"location": {...}} response.
type SingleLocation struct {
	Location Location
}

// Primary returns the location.
func (s SingleLocation) Primary() (Location, bool) {
	return s.Location, true
}

// LocationList is a {"locations": [...]} response.
type LocationList struct {
	Locations []Location
}

// Primary returns the first location.
func (l LocationList) Primary() (Location, bool) {
	if len(l.Locations) == 0 {
		return Location{}, false
	}
	return l.Locations[0], true
}

// ParseLocations resolves the response shape once. Bodies with neither key fail
// with ErrMalformedUpstreamResponse.
func ParseLocations(body []byte) (LocationsPayload, error) {
	var raw struct {
		Location  *Location  `json:"location"`
		Locations []Location `json:"locations"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedUpstreamResponse
	}
	switch {
	case raw.Location != nil:
		return SingleLocation{Location: *raw.Location}, nil
	case raw.Locations != nil:
		return LocationList{Locations: raw.Locations}, nil
	default:
		return nil, ErrMalformedUpstreamResponse
	}
}

// CategoryCodeOf returns the merchant category code of the primary location, or "".
func CategoryCodeOf(p LocationsPayload) string {
	if p == nil {
		return ""
	}
	loc, ok := p.Primary()
	if !ok {
		return ""
	}
	return strings.TrimSpace(loc.MCC)
}

// EligibilityDecision is derived at exchange time and never stored.
type EligibilityDecision struct {
	Eligible     bool
	CategoryCode string
}

// categoryTitles names the codes supported out of the box.
var categoryTitles = map[string]string{
	"7297": "Massage Parlors",
	"7298": "Health and Beauty Spas",
	"7399": "Business Services",
	"5812": "Restaurants",
	"5814": "Fast Food Restaurants",
	"7299": "Dog Shop",
}

// DefaultAllowedCategoryCodes is the built-in allow-list.
var DefaultAllowedCategoryCodes = []string{"7297", "7298", "7399", "5812", "5814", "7299"}

// CategoryTitle returns a display name for a known code.
func CategoryTitle(code string) string {
	return categoryTitles[code]
}

// EligibilityPolicy is the merchant category allow-list.
type EligibilityPolicy struct {
	allowed map[string]struct{}
}

// NewEligibilityPolicy builds a policy from codes; an empty list falls back to the defaults.
func NewEligibilityPolicy(codes []string) *EligibilityPolicy {
	if len(codes) == 0 {
		codes = DefaultAllowedCategoryCodes
	}
	allowed := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			allowed[c] = struct{}{}
		}
	}
	return &EligibilityPolicy{allowed: allowed}
}

// Decide checks a category code; an empty code is never eligible.
func (p *EligibilityPolicy) Decide(code string) EligibilityDecision {
	code = strings.TrimSpace(code)
	if code == "" {
		return EligibilityDecision{}
	}
	_, ok := p.allowed[code]
	return EligibilityDecision{Eligible: ok, CategoryCode: code}
}
