package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNewSubdomain(t *testing.T) {
	d := NewSubdomain(uuid.New(), "acme.qrius.app", now)

	require.Equal(t, TypeSubdomain, d.Type)
	require.Equal(t, StatusVerified, d.Status)
	require.Equal(t, CNAMEPlaceholder, d.CNAMETarget)
	require.NotNil(t, d.VerifiedAt)
	require.Equal(t, now, *d.VerifiedAt)
}

func TestNewCustomDomain(t *testing.T) {
	d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)

	require.Equal(t, TypeCustom, d.Type)
	require.Equal(t, StatusPending, d.Status)
	require.Nil(t, d.VerifiedAt)
	require.Nil(t, d.LastCheckAt)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DomainStatus
		want     bool
	}{
		{StatusPending, StatusVerifying, true},
		{StatusPending, StatusVerified, true},
		{StatusVerifying, StatusVerified, true},
		{StatusVerifying, StatusVerifying, true},
		{StatusVerified, StatusVerified, true},
		{StatusVerifying, StatusPending, false},
		{StatusVerified, StatusVerifying, false},
		{StatusVerified, StatusPending, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestApplyCheck(t *testing.T) {
	t.Run("verified outcome stamps timestamps and clears the error", func(t *testing.T) {
		d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)
		reason := "DNS not configured yet"
		d.LastCheckError = &reason

		later := now.Add(time.Hour)
		require.NoError(t, d.ApplyCheck(CheckOutcome{Verified: true}, later))

		require.Equal(t, StatusVerified, d.Status)
		require.Equal(t, later, *d.VerifiedAt)
		require.Equal(t, later, *d.LastCheckAt)
		require.Nil(t, d.LastCheckError)
		require.Equal(t, later, d.UpdatedAt)
	})

	t.Run("unverified outcome moves pending to verifying with the reason", func(t *testing.T) {
		d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)

		require.NoError(t, d.ApplyCheck(CheckOutcome{Verified: false, Reason: "CNAME missing"}, now))

		require.Equal(t, StatusVerifying, d.Status)
		require.Equal(t, "CNAME missing", *d.LastCheckError)
		require.Nil(t, d.VerifiedAt)
	})

	t.Run("empty reason falls back to the default", func(t *testing.T) {
		d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)

		require.NoError(t, d.ApplyCheck(CheckOutcome{Verified: false}, now))
		require.Equal(t, DefaultUnverifiedReason, *d.LastCheckError)
	})

	t.Run("verified records never fall back to verifying", func(t *testing.T) {
		d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)
		require.NoError(t, d.ApplyCheck(CheckOutcome{Verified: true}, now))

		err := d.ApplyCheck(CheckOutcome{Verified: false}, now.Add(time.Hour))
		require.Error(t, err)
		require.Equal(t, StatusVerified, d.Status)
	})

	t.Run("same outcome converges regardless of repetition", func(t *testing.T) {
		first := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)
		second := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)
		require.NoError(t, second.ApplyCheck(CheckOutcome{Verified: false}, now))

		later := now.Add(time.Hour)
		require.NoError(t, first.ApplyCheck(CheckOutcome{Verified: true}, later))
		require.NoError(t, second.ApplyCheck(CheckOutcome{Verified: true}, later))

		require.Equal(t, first.Status, second.Status)
		require.Equal(t, *first.VerifiedAt, *second.VerifiedAt)
	})
}

func TestRecordCheckFailure(t *testing.T) {
	d := NewCustomDomain(uuid.New(), "track.acme.com", "cname.hosting.example.com", now)

	later := now.Add(time.Hour)
	d.RecordCheckFailure("provider returned 503", later)

	require.Equal(t, StatusPending, d.Status)
	require.Equal(t, "provider returned 503", *d.LastCheckError)
	require.Equal(t, later, *d.LastCheckAt)
}
