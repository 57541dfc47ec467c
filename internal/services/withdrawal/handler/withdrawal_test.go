package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidateRequestAmount(t *testing.T) {
	minimum := decimal.NewFromInt(50)

	tests := []struct {
		name     string
		amount   string
		wantCode codes.Code
	}{
		{"zero amount", "0", codes.InvalidArgument},
		{"negative amount", "-10.00", codes.InvalidArgument},
		{"below minimum", "49.99", codes.InvalidArgument},
		{"at minimum", "50.00", codes.OK},
		{"above minimum", "150.75", codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequestAmount(decimal.RequireFromString(tt.amount), minimum)
			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			s, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, s.Code())
		})
	}
}

func TestNewWithdrawalHandler_BadMinimumFallsBack(t *testing.T) {
	h := NewWithdrawalHandler(nil, nil, nil, nil, "not-a-number")
	assert.True(t, h.minAmount.Equal(decimal.NewFromInt(50)))
}

func TestNewReferenceNo(t *testing.T) {
	a := newReferenceNo()
	b := newReferenceNo()

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "WD-")
}
