package dns

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHostname(t *testing.T) {
	assert.NoError(t, ValidateHostname("api.example.com"))
	assert.Error(t, ValidateHostname(""))
	assert.Error(t, ValidateHostname("-bad.example.com"))
	assert.Error(t, ValidateHostname("bad-.example.com"))
	assert.Error(t, ValidateHostname("bad..example.com"))
	assert.Error(t, ValidateHostname("has_underscore.com"))
}

func TestResolveUsesOverride(t *testing.T) {
	r := NewResolver(false)
	want := []netip.Addr{netip.MustParseAddr("10.0.0.1")}
	r.SetOverride("internal.test", want)

	got, err := r.Resolve(context.Background(), "internal.test")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveOrdersByPreference(t *testing.T) {
	r := NewResolver(true)
	r.lookup = func(ctx context.Context, host string) ([]netip.Addr, error) {
		return []netip.Addr{
			netip.MustParseAddr("10.0.0.1"),
			netip.MustParseAddr("2001:db8::1"),
		}, nil
	}

	got, err := r.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Is6())
}

func TestResolveCapsAddressCount(t *testing.T) {
	r := NewResolver(false)
	many := make([]netip.Addr, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, netip.AddrFrom4([4]byte{10, 0, 0, byte(i)}))
	}
	r.lookup = func(ctx context.Context, host string) ([]netip.Addr, error) {
		return many, nil
	}

	got, err := r.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), maxAddresses)
}
