package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemUsesLocation(t *testing.T) {
	loc := time.FixedZone("MYT", 8*3600)
	now := System{Location: loc}.Now()
	require.Equal(t, loc, now.Location())
}

func TestTodayTruncates(t *testing.T) {
	loc := time.FixedZone("MYT", 8*3600)
	fixed := &Fixed{At: time.Date(2024, 3, 31, 23, 59, 59, 0, loc)}
	today := Today(fixed)
	require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, loc), today)

	fixed.At = fixed.At.Add(2 * time.Second)
	require.Equal(t, time.April, Today(fixed).Month())
}

func TestFuncClock(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, at, Func(func() time.Time { return at }).Now())
}
