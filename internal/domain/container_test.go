package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var extractedAt = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func TestNewContainer_Refrigerated(t *testing.T) {
	c, err := NewContainer(120, Refrigerated, "patient-1", extractedAt, extractedAt)

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, ContainerStored, c.State)
	assert.Equal(t, time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), c.ExpiresAt)
	assert.Nil(t, c.FlaggedAt)
	assert.Equal(t, 1, c.Version)
}

func TestNewContainer_Frozen(t *testing.T) {
	c, err := NewContainer(80, Frozen, "patient-1", extractedAt, extractedAt)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), c.ExpiresAt)
}

func TestNewContainer_ExpiryGap(t *testing.T) {
	starts := []time.Time{
		extractedAt,
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, start := range starts {
		r, err := NewContainer(10, Refrigerated, "p", start, start)
		require.NoError(t, err)
		assert.Equal(t, 5*24*time.Hour, r.ExpiresAt.Sub(r.ExtractedAt))

		f, err := NewContainer(10, Frozen, "p", start, start)
		require.NoError(t, err)
		assert.True(t, f.ExpiresAt.After(f.ExtractedAt))
		assert.Equal(t, start.AddDate(0, 6, 0), f.ExpiresAt)
	}
}

func TestNewContainer_Error_InvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		volume float64
		mode   StorageMode
		owner  string
	}{
		{"zero volume", 0, Refrigerated, "p"},
		{"negative volume", -5, Refrigerated, "p"},
		{"NaN volume", math.NaN(), Refrigerated, "p"},
		{"unknown mode", 10, StorageMode("ambient"), "p"},
		{"missing owner", 10, Frozen, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewContainer(tc.volume, tc.mode, tc.owner, extractedAt, extractedAt)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestFlagForPickup_ThenCancelFlag_RoundTrip(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	before := c.Clone()

	require.NoError(t, c.FlagForPickup(extractedAt.Add(time.Hour)))
	assert.Equal(t, ContainerFlaggedForPickup, c.State)
	require.NotNil(t, c.FlaggedAt)

	require.NoError(t, c.CancelFlag(extractedAt.Add(2*time.Hour)))
	assert.Equal(t, before.State, c.State)
	assert.Nil(t, c.FlaggedAt)
	assert.Equal(t, before.ExpiresAt, c.ExpiresAt)
	assert.Equal(t, before.StorageMode, c.StorageMode)
}

func TestFlagForPickup_Error_NotStored(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	require.NoError(t, c.FlagForPickup(extractedAt))

	err := c.FlagForPickup(extractedAt)

	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCancelFlag_Error_NotFlagged(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)

	err := c.CancelFlag(extractedAt)

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, ContainerStored, c.State)
}

func TestEvaluate_Stored(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	rules := DefaultRules()

	testCases := []struct {
		name     string
		now      time.Time
		expected Decision
	}{
		{"fresh", extractedAt.Add(time.Hour), DecisionNone},
		{"just outside window", c.ExpiresAt.Add(-48*time.Hour - time.Second), DecisionNone},
		{"exactly 48h left", c.ExpiresAt.Add(-48 * time.Hour), DecisionNearExpiry},
		{"one second left", c.ExpiresAt.Add(-time.Second), DecisionNearExpiry},
		{"at expiry", c.ExpiresAt, DecisionExpire},
		{"past expiry", c.ExpiresAt.Add(time.Hour), DecisionExpire},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := c.Evaluate(tc.now, rules)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestEvaluate_Flagged_FollowsPickupTimer(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	flaggedAt := c.ExpiresAt.Add(-2 * time.Hour)
	require.NoError(t, c.FlagForPickup(flaggedAt))
	rules := DefaultRules()

	d, err := c.Evaluate(flaggedAt.Add(23*time.Hour+59*time.Minute), rules)
	require.NoError(t, err)
	assert.Equal(t, DecisionPickupOverdue, d, "past nominal expiry but not expired")

	d, err = c.Evaluate(flaggedAt.Add(24*time.Hour), rules)
	require.NoError(t, err)
	assert.Equal(t, DecisionWithdraw, d)

	d, err = c.Evaluate(flaggedAt.Add(time.Hour), rules)
	require.NoError(t, err)
	assert.Equal(t, DecisionNone, d)
}

func TestEvaluate_TerminalStates(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	require.NoError(t, c.Expire(c.ExpiresAt))

	for _, now := range []time.Time{c.ExpiresAt, c.ExpiresAt.AddDate(1, 0, 0)} {
		d, err := c.Evaluate(now, DefaultRules())
		require.NoError(t, err)
		assert.Equal(t, DecisionNone, d)
	}
	assert.True(t, c.IsTerminal())
	assert.True(t, errors.Is(c.FlagForPickup(c.ExpiresAt), ErrInvalidTransition))
}

func TestEvaluate_Error_Malformed(t *testing.T) {
	c, _ := NewContainer(120, Refrigerated, "p", extractedAt, extractedAt)
	c.State = ContainerFlaggedForPickup
	c.FlaggedAt = nil

	_, err := c.Evaluate(extractedAt, DefaultRules())

	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestWithdraw_Error_NotFlagged(t *testing.T) {
	c, _ := NewContainer(120, Frozen, "p", extractedAt, extractedAt)

	err := c.Withdraw(extractedAt)

	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestClone_IsDeep(t *testing.T) {
	c, _ := NewContainer(120, Frozen, "p", extractedAt, extractedAt)
	require.NoError(t, c.FlagForPickup(extractedAt))

	cp := c.Clone()
	*cp.FlaggedAt = cp.FlaggedAt.Add(time.Hour)

	assert.Equal(t, extractedAt, *c.FlaggedAt)
}
