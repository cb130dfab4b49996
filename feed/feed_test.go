package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/model"
)

type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	failGet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return c.failGet
	}
	data, ok := c.values[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

// stubSupplier : counts calls, optionally blocks until released or cancelled
type stubSupplier struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *stubSupplier) Series(ctx context.Context, code string) (Quote, error) {
	n := s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Quote{}, s.err
	}
	return Quote{
		Code: model.NormalizeCode(code),
		Name: "call-" + string(rune('0'+n)),
		Bars: []model.Bar{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: float64(n)}},
	}, nil
}

func (s *stubSupplier) Instrument(_ context.Context, code string) (model.Instrument, error) {
	s.calls.Add(1)
	if s.err != nil {
		return model.Instrument{}, s.err
	}
	return model.Instrument{Code: code, Name: "name", Industry: "银行"}, nil
}

func TestCachedSupplier_ReadThrough(t *testing.T) {
	next := &stubSupplier{}
	cached := NewCachedSupplier(next, newMemoryCache())

	first, err := cached.Series(context.Background(), "600000")
	require.NoError(t, err)
	second, err := cached.Series(context.Background(), "sh.600000")
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Bars[0].Date.Equal(second.Bars[0].Date))

	refreshed, err := cached.Refresh(context.Background(), "600000")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 2.0, refreshed.Bars[0].Close)

	again, err := cached.Series(context.Background(), "600000")
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.Bars[0].Close)
}

func TestCachedSupplier_CacheFailureFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.failGet = errors.New("connection refused")
	next := &stubSupplier{}
	cached := NewCachedSupplier(next, cache)

	_, err := cached.Series(context.Background(), "600000")
	require.NoError(t, err)
	_, err = cached.Series(context.Background(), "600000")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedSupplier_ErrorsAreNotCached(t *testing.T) {
	next := &stubSupplier{err: ErrNotFound}
	cached := NewCachedSupplier(next, newMemoryCache())

	_, err := cached.Instrument(context.Background(), "600000")
	assert.ErrorIs(t, err, ErrNotFound)

	next.err = nil
	got, err := cached.Instrument(context.Background(), "600000")
	require.NoError(t, err)
	assert.Equal(t, "银行", got.Industry)

	_, err = cached.Instrument(context.Background(), "600000")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestLoader_LastRequestWins(t *testing.T) {
	next := &stubSupplier{release: make(chan struct{})}
	loader := NewLoader(next)

	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "session", "600000")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan Quote, 1)
	go func() {
		q, err := loader.Load(context.Background(), "session", "000001")
		assert.NoError(t, err)
		secondDone <- q
	}()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("first load was not cancelled")
	}

	require.Eventually(t, func() bool { return next.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(next.release)
	q := <-secondDone
	assert.Equal(t, "sz.000001", q.Code)
}

func TestLoader_KeysAreIndependent(t *testing.T) {
	next := &stubSupplier{}
	loader := NewLoader(next)

	a, err := loader.Load(context.Background(), "a", "600000")
	require.NoError(t, err)
	b, err := loader.Load(context.Background(), "b", "600000")
	require.NoError(t, err)
	assert.Equal(t, "sh.600000", a.Code)
	assert.Equal(t, "sh.600000", b.Code)
}

func TestLoader_ForgetCancels(t *testing.T) {
	next := &stubSupplier{release: make(chan struct{})}
	loader := NewLoader(next)

	done := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "s", "600000")
		done <- err
	}()
	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)

	loader.Forget("s")
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("load was not cancelled")
	}
}

func TestHub_Deliver(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	var mu sync.Mutex
	var got []string
	unsubscribe := hub.Subscribe("600000", func(q Quote) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, q.Name)
	})
	hub.Subscribe("000001", func(Quote) { t.Error("wrong code delivered") })
	assert.Equal(t, 1, hub.Subscribers("sh.600000"))

	hub.Publish(Quote{Code: "sh.600000", Name: "first"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, time.Millisecond)

	unsubscribe()
	assert.Equal(t, 0, hub.Subscribers("600000"))
	hub.Publish(Quote{Code: "sh.600000", Name: "second"})
	hub.Publish(Quote{Code: "sh.600001", Name: "flush"})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first"}, got)
}

func TestHub_StopWithoutStart(t *testing.T) {
	hub := NewHub()
	hub.Stop()
	hub.Publish(Quote{Code: "sh.600000"})
}

type failingRefresher struct {
	stubSupplier
	fail string
}

func (f *failingRefresher) Refresh(ctx context.Context, code string) (Quote, error) {
	if code == f.fail {
		return Quote{}, ErrNotFound
	}
	return f.Series(ctx, code)
}

func TestWarmer_RefreshAll(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	var delivered atomic.Int32
	hub.Subscribe("600000", func(Quote) { delivered.Add(1) })

	refresher := &failingRefresher{fail: "sz.000001"}
	warmer := NewWarmer(refresher, hub, []string{"600000", "000001", " "}, time.Second)

	assert.Equal(t, 1, warmer.RefreshAll(context.Background()))
	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, time.Millisecond)
}

func TestWarmer_Schedule(t *testing.T) {
	warmer := NewWarmer(&failingRefresher{}, nil, []string{"600000"}, 0)
	assert.NoError(t, warmer.Schedule("0 30 15 * * 1-5"))
	assert.Error(t, warmer.Schedule("not a cron"))

	warmer.Start()
	warmer.Stop()
}
