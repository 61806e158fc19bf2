package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation error",
			err:  ValidationError{Field: "granularity", Reason: "must be day, week, month"},
			want: "invalid granularity: must be day, week, month",
		},
		{
			name: "data integrity error with item",
			err:  DataIntegrityError{ItemID: 42, Reason: "event has no timestamp"},
			want: "inconsistent history for item 42: event has no timestamp",
		},
		{
			name: "data integrity error without item",
			err:  DataIntegrityError{Reason: "event references no item"},
			want: "inconsistent history: event references no item",
		},
		{
			name: "auth error with detail",
			err:  AuthError{Status: 401, Detail: "invalid token"},
			want: "authentication failed (status 401): invalid token",
		},
		{
			name: "auth error without detail",
			err:  AuthError{Status: 403},
			want: "authentication failed (status 403)",
		},
		{
			name: "network error",
			err:  NetworkError{Op: "GET /api/v1/projects", Err: errors.New("connection refused")},
			want: "network failure during GET /api/v1/projects: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorClassification(t *testing.T) {
	validation := fmt.Errorf("compute: %w", ValidationError{Field: "start", Reason: "after end"})
	auth := fmt.Errorf("fetch: %w", AuthError{Status: 401})
	network := fmt.Errorf("fetch: %w", NetworkError{Op: "GET", Err: errors.New("timeout")})

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(auth))

	assert.True(t, IsAuth(auth))
	assert.False(t, IsAuth(network))

	assert.True(t, IsNetwork(network))
	assert.False(t, IsNetwork(validation))
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: i/o timeout")
	err := NetworkError{Op: "GET /api/v1/userstories", Err: inner}

	require.True(t, errors.Is(err, inner), "errors.Is should see through NetworkError")

	var ne NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, "GET /api/v1/userstories", ne.Op)
}

func TestDataIntegrityAs(t *testing.T) {
	wrapped := fmt.Errorf("compute: %w", DataIntegrityError{ItemID: 7, Reason: "zero timestamp"})

	var die DataIntegrityError
	require.True(t, errors.As(wrapped, &die))
	assert.Equal(t, 7, die.ItemID)
}
