package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue(t *testing.T) {
	assert.Len(t, BusinessTypes(), 5)
	assert.Len(t, Services(), 6)

	for _, b := range BusinessTypes() {
		for _, s := range b.AvailableServices {
			_, err := LookupService(s)
			assert.NoError(t, err, "%s lists unknown service %s", b.Type, s)
		}
	}
}

func TestCatalogue_ReturnsCopies(t *testing.T) {
	types := BusinessTypes()
	types[0].Label = "changed"

	info, err := LookupBusinessType(BusinessBeautyAesthetic)
	require.NoError(t, err)
	assert.Equal(t, "Beauty & Aesthetic", info.Label)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := LookupBusinessType("bakery")
	assert.ErrorIs(t, err, ErrUnknownBusinessType)

	_, err = LookupService("drone_delivery")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestRequiresSquare(t *testing.T) {
	tests := []struct {
		name     string
		business BusinessType
		services []ServiceType
		want     bool
		wantErr  error
	}{
		{name: "salon needs square", business: BusinessSalon, want: true},
		{name: "cafe without square services", business: BusinessCafeRestaurantTakeaway,
			services: []ServiceType{ServiceTableBooking, ServiceAICallAgent}},
		{name: "cafe with takeaway orders", business: BusinessCafeRestaurantTakeaway,
			services: []ServiceType{ServiceTableBooking, ServiceTakeawayOrders}, want: true},
		{name: "no business type with booking", services: []ServiceType{ServiceSocialMediaBooking}, want: true},
		{name: "other with marketing only", business: BusinessOther,
			services: []ServiceType{ServiceSocialMediaMarketing}},
		{name: "unknown business", business: "bakery", wantErr: ErrUnknownBusinessType},
		{name: "unknown service", business: BusinessSalon,
			services: []ServiceType{"drone_delivery"}, wantErr: ErrUnknownService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiresSquare(tt.business, tt.services)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
