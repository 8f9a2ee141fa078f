package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPlanPriceForTier(t *testing.T) {
	plan := Plan{
		BasePrice:       500,
		StandardPrice:   650,
		CommercialPrice: 1200,
		ExtendedPrice:   2500,
	}

	assert.Equal(t, 0.0, plan.PriceForTier(LicensePreview))
	assert.Equal(t, 650.0, plan.PriceForTier(LicenseStandard))
	assert.Equal(t, 1200.0, plan.PriceForTier(LicenseCommercial))
	assert.Equal(t, 2500.0, plan.PriceForTier(LicenseExtended))
}

func TestPlanPriceForTier_FallsBackToBase(t *testing.T) {
	plan := Plan{BasePrice: 500}

	assert.Equal(t, 500.0, plan.PriceForTier(LicenseStandard))
	assert.Equal(t, 500.0, plan.PriceForTier(LicenseCommercial))
	assert.Equal(t, 500.0, plan.PriceForTier(LicenseExtended))
}

func TestGalleryImagePriceForTier(t *testing.T) {
	img := GalleryImage{Price: 50}

	assert.Equal(t, 0.0, img.PriceForTier(LicensePreview))
	assert.Equal(t, 50.0, img.PriceForTier(LicenseStandard))
	assert.Equal(t, 100.0, img.PriceForTier(LicenseCommercial))
	assert.Equal(t, 200.0, img.PriceForTier(LicenseExtended))
}

func TestUserRoleIsStaff(t *testing.T) {
	assert.False(t, RoleCustomer.IsStaff())
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleSuperAdmin.IsStaff())
	assert.False(t, UserRole("OTHER").IsStaff())
}
