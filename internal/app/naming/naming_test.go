package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"radar_fl", "radar_fl"},
		{"/radar/fl", "v__radar_fl"},
		{"123topic", "v_123topic"},
		{"", "v_"},
		{"camera.front-left", "camera_front_left"},
		{"température", "temp_rature"},
		{"_private", "v__private"},
	}
	for _, tc := range cases {
		used := map[string]struct{}{}
		assert.Equal(t, tc.want, Sanitize(tc.in, used), "input %q", tc.in)
		_, reserved := used[tc.want]
		assert.True(t, reserved, "input %q not reserved", tc.in)
	}
}

func TestSanitizeCollisions(t *testing.T) {
	used := map[string]struct{}{}
	assert.Equal(t, "a_b", Sanitize("a/b", used))
	assert.Equal(t, "a_b_1", Sanitize("a.b", used))
	assert.Equal(t, "a_b_2", Sanitize("a-b", used))
	assert.Equal(t, "a_b_1_1", Sanitize("a_b_1", used))
}

func TestSanitizeTruncates(t *testing.T) {
	long := "t" + strings.Repeat("x", 100)
	used := map[string]struct{}{}

	first := Sanitize(long, used)
	require.Len(t, first, MaxIdentLen)

	second := Sanitize(long, used)
	require.Len(t, second, MaxIdentLen)
	assert.True(t, strings.HasSuffix(second, "_1"))
	assert.NotEqual(t, first, second)
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper("topic_name_map")
	topics := []string{"/radar/fl", "_radar_fl", "radar_fl", "topic_name_map", "/radar/fl"}

	for _, topic := range topics {
		m.Register(topic)
	}

	require.Equal(t, 4, m.Len())
	pairs := m.Pairs()
	assert.Equal(t, "/radar/fl", pairs[0].Original)
	assert.Equal(t, "v__radar_fl", pairs[0].Safe)
	assert.Equal(t, "v__radar_fl_1", pairs[1].Safe)
	assert.Equal(t, "radar_fl", pairs[2].Safe)
	assert.Equal(t, "topic_name_map_1", pairs[3].Safe)

	seen := map[string]bool{}
	for _, p := range pairs {
		assert.False(t, seen[p.Safe], "duplicate safe name %s", p.Safe)
		seen[p.Safe] = true

		orig, ok := m.Original(p.Safe)
		require.True(t, ok)
		assert.Equal(t, p.Original, orig)

		safe, ok := m.Safe(p.Original)
		require.True(t, ok)
		assert.Equal(t, p.Safe, safe)
	}
}

func TestMapperDeterministic(t *testing.T) {
	topics := []string{"a/b", "a.b", "/x", "x", "_x"}
	run := func() []string {
		m := NewMapper()
		var out []string
		for _, topic := range topics {
			out = append(out, m.Register(topic))
		}
		return out
	}
	assert.Equal(t, run(), run())
}
