package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseTrackingStatus(t *testing.T) {
	for _, st := range TrackingStatuses {
		got, err := ParseTrackingStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseTrackingStatus("In-Transit")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, got)

	for _, bad := range []string{"", "pending", "DELIVERED", "Shipped", "in transit"} {
		_, err := ParseTrackingStatus(bad)
		assert.Error(t, err, "status %q", bad)
	}
}

func TestCanTransition_AllPairsAllowed(t *testing.T) {
	for _, from := range TrackingStatuses {
		for _, to := range TrackingStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition("Shipped", StatusPending))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleBuyer.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("customer").Valid())
}

func TestCallerIs(t *testing.T) {
	c := Caller{ID: primitive.NewObjectID(), Role: RoleShipper}
	assert.True(t, c.Is(RoleExporter, RoleShipper))
	assert.False(t, c.Is(RoleBuyer))
}

func TestOrderAssignedTo(t *testing.T) {
	s := primitive.NewObjectID()
	o := &Order{}
	assert.False(t, o.AssignedTo(s))
	o.Shipper = &s
	assert.True(t, o.AssignedTo(s))
	assert.False(t, o.AssignedTo(primitive.NewObjectID()))
}
