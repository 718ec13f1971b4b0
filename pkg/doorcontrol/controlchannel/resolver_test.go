package controlchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("AABBDD", "", &fakeTransport{}, "", model.RoomUnassigned)

	testCases := []struct {
		name     string
		target   string
		expected string
	}{
		{
			name:     "exact match",
			target:   "ESP32_AABBCC",
			expected: "ESP32_AABBCC",
		},
		{
			name:     "exact match without prefix",
			target:   "AABBDD",
			expected: "AABBDD",
		},
		{
			name:     "prefixed target matches bare registration",
			target:   "ESP32_AABBDD",
			expected: "AABBDD",
		},
		{
			name:     "bare target matches prefixed registration",
			target:   "AABBCC",
			expected: "ESP32_AABBCC",
		},
		{
			name:     "prefixed target matches by suffix",
			target:   "ESP32_BBCC",
			expected: "ESP32_AABBCC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := r.Resolve(tc.target, "ESP32_")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sess.DeviceID)
		})
	}
}

func TestRegistryResolveExactWinsOverSuffix(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_CC", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("CC", "", &fakeTransport{}, "", model.RoomUnassigned)

	// "ESP32_CC" is an exact match and must not fall through to the
	// stripped or suffix variants.
	sess, err := r.Resolve("ESP32_CC", "ESP32_")
	require.NoError(t, err)
	assert.Equal(t, "ESP32_CC", sess.DeviceID)
}

func TestRegistryResolveSuffixTieBreak(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_XXCCDD", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("ESP32_YYCCDD", "", &fakeTransport{}, "", model.RoomUnassigned)

	// Two registered IDs share the suffix; the first registration wins,
	// deterministically.
	for i := 0; i < 10; i++ {
		sess, err := r.Resolve("ESP32_CCDD", "ESP32_")
		require.NoError(t, err)
		assert.Equal(t, "ESP32_XXCCDD", sess.DeviceID)
	}
}

func TestRegistryResolveNotFound(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)

	_, err := r.Resolve("ESP32_FFFFFF", "ESP32_")
	require.Error(t, err)
	require.True(t, IsTargetNotFoundError(err))

	// The error carries the roster at resolution time.
	notFound := err.(*TargetNotFoundError)
	assert.Equal(t, "ESP32_FFFFFF", notFound.Target)
	assert.Equal(t, []string{"ESP32_AABBCC"}, notFound.KnownDevices)
}

func TestRegistryResolveEmptyPrefix(t *testing.T) {
	r := NewRegistry()
	r.Upsert("AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)

	// Without a configured prefix only exact matches resolve.
	sess, err := r.Resolve("AABBCC", "")
	require.NoError(t, err)
	assert.Equal(t, "AABBCC", sess.DeviceID)

	_, err = r.Resolve("BBCC", "")
	assert.True(t, IsTargetNotFoundError(err))
}
