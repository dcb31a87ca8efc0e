package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeHandle(t *testing.T) {
	require.Equal(t, "alice", NormalizeHandle("@Alice"))
	require.Equal(t, "alice", NormalizeHandle("  alice  "))
	require.Equal(t, "alice", NormalizeHandle("@ alice"))
	require.Equal(t, "", NormalizeHandle("@"))
	require.Equal(t, "", NormalizeHandle("   "))
}

func TestHandleVariants(t *testing.T) {
	require.Equal(t, []string{"Alice", "alice", "@Alice", "@alice"}, HandleVariants("@Alice"))
	// Already-lowercase input collapses to two forms.
	require.Equal(t, []string{"alice", "@alice"}, HandleVariants("alice"))
	require.Nil(t, HandleVariants("@"))
	require.Nil(t, HandleVariants(""))
}

func TestIsHTTPURL(t *testing.T) {
	require.True(t, IsHTTPURL("https://cdn.example.com/a.png"))
	require.True(t, IsHTTPURL("http://cdn.example.com/a.png"))
	require.False(t, IsHTTPURL("data:image/png;base64,xyz"))
	require.False(t, IsHTTPURL("/static/a.png"))
	require.False(t, IsHTTPURL(""))
}
