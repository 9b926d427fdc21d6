package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_Valid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.CheckAgreement())
	require.Equal(t, 3, p.RequiredAgreement)
	require.True(t, p.LivenessEnabled)
	require.Equal(t, 0.1, p.Padding(RoleReference))
	require.Equal(t, 0.2, p.Padding(RoleProbe))
}

func TestPolicy_CheckAgreement(t *testing.T) {
	for _, required := range []int{0, 4, -1} {
		p := DefaultPolicy()
		p.RequiredAgreement = required
		require.ErrorIs(t, p.CheckAgreement(), ErrInvalidPolicy, required)
	}

	p := DefaultPolicy()
	p.RequiredAgreement = 1
	require.NoError(t, p.CheckAgreement())
}
