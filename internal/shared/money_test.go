package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiplyMoney(t *testing.T) {
	require.Equal(t, 15000.0, MultiplyMoney(100, 150))
	require.Equal(t, 0.3, MultiplyMoney(0.1, 3))
	require.Equal(t, 1234.57, MultiplyMoney(12.3457, 100))
	require.Equal(t, 0.0, MultiplyMoney(0, 150))
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "LKR 15,000.00", FormatMoney("LKR", 15000))
	require.Equal(t, "LKR 45,000.00", FormatMoney("LKR", 45000))
	require.Equal(t, "1,234.50", FormatMoney("", 1234.5))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 0.01, Round2(0.005))
	require.Equal(t, 12.35, Round2(12.345))
	require.Equal(t, -0.01, Round2(-0.005))
	require.Equal(t, MaxAmount, Round2(MaxAmount))
}
