package decorate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0ms"},
		{name: "milliseconds", d: 120 * time.Millisecond, want: "120ms"},
		{name: "just under five seconds", d: 4999 * time.Millisecond, want: "4999ms"},
		{name: "five seconds", d: 5000 * time.Millisecond, want: "5.00s0ms"},
		{name: "seconds with residual", d: 12340 * time.Millisecond, want: "12.34s340ms"},
		{name: "exactly one minute", d: 60 * time.Second, want: "60.00s0ms"},
		{name: "minutes", d: 3*time.Minute + 45*time.Second + 120*time.Millisecond, want: "3m45s120ms"},
		{name: "just over a minute", d: 60001 * time.Millisecond, want: "1m0s1ms"},
		{name: "negative clamps to zero", d: -time.Second, want: "0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}

func TestFormatElapsed_TierConsistency(t *testing.T) {
	for ms := int64(0); ms <= 200000; ms += 37 {
		d := time.Duration(ms) * time.Millisecond
		got := FormatElapsed(d)

		switch {
		case ms < 5000:
			assert.NotContains(t, got, ".", "d=%dms", ms)
			assert.True(t, strings.HasSuffix(got, "ms"), "d=%dms", ms)
		case ms <= 60000:
			assert.Equal(t, 1, strings.Count(got, "."), "d=%dms got %s", ms, got)
			dot := strings.Index(got, ".")
			assert.Equal(t, byte('s'), got[dot+3], "two decimals expected, d=%dms got %s", ms, got)
		default:
			assert.Contains(t, got, "m", "d=%dms", ms)
			assert.Contains(t, got, "s", "d=%dms", ms)
			assert.NotContains(t, got, ".", "d=%dms", ms)
		}
	}
}
