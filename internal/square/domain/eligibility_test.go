package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocations(t *testing.T) {
	t.Run("single location", func(t *testing.T) {
		payload, err := ParseLocations([]byte(`{"location":{"id":"L1","mcc":"5812"}}`))
		require.NoError(t, err)

		assert.IsType(t, SingleLocation{}, payload)
		assert.Equal(t, "5812", CategoryCodeOf(payload))
	})

	t.Run("location list uses first element", func(t *testing.T) {
		payload, err := ParseLocations([]byte(`{"locations":[{"id":"L1","mcc":"7297"},{"id":"L2","mcc":"9999"}]}`))
		require.NoError(t, err)

		assert.IsType(t, LocationList{}, payload)
		assert.Equal(t, "7297", CategoryCodeOf(payload))
	})

	t.Run("empty list has no category", func(t *testing.T) {
		payload, err := ParseLocations([]byte(`{"locations":[]}`))
		require.NoError(t, err)

		assert.Equal(t, "", CategoryCodeOf(payload))
	})

	t.Run("location without mcc", func(t *testing.T) {
		payload, err := ParseLocations([]byte(`{"location":{"id":"L1"}}`))
		require.NoError(t, err)

		assert.Equal(t, "", CategoryCodeOf(payload))
	})

	t.Run("unexpected shape", func(t *testing.T) {
		_, err := ParseLocations([]byte(`{"errors":[]}`))
		assert.ErrorIs(t, err, ErrMalformedUpstreamResponse)

		_, err = ParseLocations([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedUpstreamResponse)
	})

	t.Run("nil payload", func(t *testing.T) {
		assert.Equal(t, "", CategoryCodeOf(nil))
	})
}

func TestEligibilityPolicy_Decide(t *testing.T) {
	policy := NewEligibilityPolicy(nil)

	for _, code := range DefaultAllowedCategoryCodes {
		decision := policy.Decide(code)
		assert.True(t, decision.Eligible, code)
		assert.Equal(t, code, decision.CategoryCode)
		assert.NotEmpty(t, CategoryTitle(code))
	}

	assert.Equal(t, EligibilityDecision{Eligible: false, CategoryCode: "9999"}, policy.Decide("9999"))
	assert.Equal(t, EligibilityDecision{}, policy.Decide(""))
	assert.Equal(t, "Restaurants", CategoryTitle("5812"))

	custom := NewEligibilityPolicy([]string{" 1234 ", ""})
	assert.True(t, custom.Decide("1234").Eligible)
	assert.False(t, custom.Decide("5812").Eligible)
}
