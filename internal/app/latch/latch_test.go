package latch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Latch_Set(t *testing.T) {
	l := New()

	assert.False(t, l.IsSet())
	assert.True(t, l.Set())
	assert.True(t, l.IsSet())
	assert.False(t, l.Set())
	assert.True(t, l.IsSet())

	select {
	case <-l.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}

func Test_Latch_ConcurrentSet(t *testing.T) {
	l := New()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < 32; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if l.Set() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, l.IsSet())
}

func Test_Latch_Wait(t *testing.T) {
	tests := []struct {
		name     string
		setAfter time.Duration
		timeout  time.Duration
		expected bool
	}{
		{name: "set before timeout", setAfter: 10 * time.Millisecond, timeout: time.Second, expected: true},
		{name: "timeout first", setAfter: -1, timeout: 20 * time.Millisecond, expected: false},
		{name: "zero timeout unset", setAfter: -1, timeout: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()

			if tt.setAfter >= 0 {
				time.AfterFunc(tt.setAfter, func() { l.Set() })
			}

			assert.Equal(t, tt.expected, l.Wait(tt.timeout))
		})
	}
}

func Test_Latch_WaitAlreadySet(t *testing.T) {
	l := New()
	l.Set()

	start := time.Now()
	assert.True(t, l.Wait(time.Hour))
	assert.True(t, l.Wait(0))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
