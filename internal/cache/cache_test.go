package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestRoundTrip(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{TTL: time.Minute, Now: clock.Now})

	c.Set("pikachu", "electric")
	v, ok := c.Get("pikachu")
	require.True(t, ok)
	require.Equal(t, "electric", v)
	require.True(t, c.Has("pikachu"))

	clock.Advance(time.Minute)
	_, ok = c.Get("pikachu")
	require.True(t, ok, "entry at exactly ttl is still fresh")

	clock.Advance(time.Second)
	_, ok = c.Get("pikachu")
	require.False(t, ok)
	require.False(t, c.Has("pikachu"))
}

func TestDefaults(t *testing.T) {
	c := New[int](Options{})
	require.Equal(t, DefaultTTL, c.TTL())
	require.Equal(t, time.Duration(float64(DefaultTTL)*0.2), c.period)
}

func TestSetWithTTLOverridesDefault(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{TTL: time.Hour, Now: clock.Now})

	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)
	clock.Advance(2 * time.Second)

	_, ok := c.Get("short")
	require.False(t, ok)
	v, ok := c.Get("long")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestOverwrite(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{TTL: time.Minute, Now: clock.Now})
	c.Set("k", 1)
	clock.Advance(50 * time.Second)
	c.Set("k", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok, "overwrite resets insertion time")
	require.Equal(t, 2, v)
}

func TestDelete(t *testing.T) {
	c := New[int](Options{})
	c.Set("k", 1)

	require.Equal(t, 1, c.Delete("k"))
	_, ok := c.Get("k")
	require.False(t, ok)
	require.False(t, c.Has("k"))
	require.Equal(t, 0, c.Delete("k"))
	require.Equal(t, 0, c.Delete("never-set"))
}

func TestStats(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{TTL: time.Minute, Now: clock.Now})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Has("a")

	s := c.Stats()
	require.Equal(t, Stats{Keys: 2, Hits: 2, Misses: 1}, s)

	clock.Advance(2 * time.Minute)
	c.Get("b")
	require.Equal(t, Stats{Keys: 0, Hits: 2, Misses: 2}, c.Stats())

	c.Clear()
	require.Equal(t, Stats{}, c.Stats())
}

func TestSweep(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{TTL: time.Minute, Now: clock.Now})
	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, c.Sweep())
	require.Len(t, c.items, 1)
}

func TestJanitor(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{TTL: time.Minute, CheckPeriod: 5 * time.Millisecond, Now: clock.Now})
	c.Start(context.Background())
	defer c.Close()

	c.Set("a", 1)
	clock.Advance(2 * time.Minute)

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.items) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCloseWithoutStart(t *testing.T) {
	c := New[int](Options{})
	c.Close()
	c.Start(context.Background())
	c.Start(context.Background())
	c.Close()
	c.Close()
}

func TestTinyTTLJanitorPeriod(t *testing.T) {
	c := New[int](Options{TTL: time.Nanosecond})
	require.Equal(t, time.Second, c.period)
	c.Start(context.Background())
	c.Close()

	require.Equal(t, 12*time.Minute, New[int](Options{TTL: time.Hour}).period)
	require.Equal(t, 5*time.Millisecond, New[int](Options{TTL: time.Nanosecond, CheckPeriod: 5 * time.Millisecond}).period)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](Options{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set("k", j)
				c.Get("k")
				c.Has("k")
				c.Stats()
			}
		}(i)
	}
	wg.Wait()
	s := c.Stats()
	require.Equal(t, uint64(16*200), s.Hits+s.Misses)
}
