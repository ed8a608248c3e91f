package phase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Timeline_RecordIfAbsent(t *testing.T) {
	tl := NewTimeline([]string{"first_log", "boot", "boot", "server_ready"})

	assert.Equal(t, []string{"first_log", "boot", "server_ready"}, tl.Names())

	assert.True(t, tl.RecordIfAbsent("boot", 1.5))
	assert.False(t, tl.RecordIfAbsent("boot", 9.0))
	assert.False(t, tl.RecordIfAbsent("unknown", 2.0))

	v, ok := tl.Get("boot")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = tl.Get("unknown")
	assert.False(t, ok)
	assert.Equal(t, 1, tl.Count())
}

func Test_Timeline_WriteOnce(t *testing.T) {
	tl := NewTimeline([]string{"p"})

	require.True(t, tl.RecordIfAbsent("p", 0))

	for i := 1; i <= 100; i++ {
		assert.False(t, tl.RecordIfAbsent("p", float64(i)))
	}

	v, _ := tl.Get("p")
	assert.Equal(t, 0.0, v)
}

func Test_Timeline_Snapshot(t *testing.T) {
	tl := NewTimeline([]string{"first_log", "boot", "server_ready"})
	tl.RecordIfAbsent("server_ready", 3)
	tl.RecordIfAbsent("first_log", 0.25)

	snap := tl.Snapshot()
	require.Len(t, snap, 3)

	assert.Equal(t, "first_log", snap[0].Name)
	require.NotNil(t, snap[0].Elapsed)
	assert.Equal(t, 0.25, *snap[0].Elapsed)

	assert.Equal(t, "boot", snap[1].Name)
	assert.Nil(t, snap[1].Elapsed)

	assert.Equal(t, 3.0, *snap[2].Elapsed)

	*snap[0].Elapsed = 99
	v, _ := tl.Get("first_log")
	assert.Equal(t, 0.25, v)
}

func Test_Elapsed(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1.5, Elapsed(base, base.Add(1500*time.Millisecond)))
	assert.Equal(t, -1.0, Elapsed(base, base.Add(-time.Second)))
}

func Test_Durations(t *testing.T) {
	var d Durations

	_, ok := d.StartupDuration()
	assert.False(t, ok)

	created := time.Now()
	started := created.Add(750 * time.Millisecond)

	assert.True(t, d.MarkStarted(started))
	_, ok = d.StartupDuration()
	assert.False(t, ok)

	assert.True(t, d.MarkCreated(created))
	assert.False(t, d.MarkCreated(created.Add(time.Hour)))
	assert.False(t, d.MarkStarted(started.Add(time.Hour)))

	got, ok := d.StartupDuration()
	assert.True(t, ok)
	assert.InDelta(t, 0.75, got, 1e-9)

	c, ok := d.Created()
	assert.True(t, ok)
	assert.Equal(t, created, c)
}

func Test_Durations_Concurrent(t *testing.T) {
	var (
		d  Durations
		wg sync.WaitGroup
	)

	base := time.Now()
	wins := make(chan int, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			if d.MarkStarted(base.Add(time.Duration(i+1) * time.Second)) {
				wins <- i
			}

			d.StartupDuration()
		}(i)
	}

	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}
