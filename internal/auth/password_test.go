package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Sup3r$ecret", 4)
	require.NoError(t, err)
	require.NotEqual(t, "Sup3r$ecret", hash)

	require.NoError(t, ComparePassword(hash, "Sup3r$ecret"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Abcdef1!", false},
		{"too short", "Ab1!", true},
		{"no digit", "Abcdefg!", true},
		{"no uppercase", "abcdefg1!", true},
		{"no lowercase", "ABCDEFG1!", true},
		{"no special char", "Abcdefg1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
