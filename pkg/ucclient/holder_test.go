package ucclient_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uc-client/pkg/ucclient"
)

func TestHolderLifecycle(t *testing.T) {
	h := &ucclient.Holder{}
	assert.Nil(t, h.Current())

	c := h.Init()
	require.NotNil(t, c)
	assert.Same(t, c, h.Current())
	assert.Equal(t, ucclient.Endpoint{}, h.Current().Endpoint())
	assert.False(t, c.Configured())

	h.InitWith("10.0.0.1", 9000, 9001)
	cur := h.Current()
	assert.Same(t, c, cur)
	assert.Equal(t, "10.0.0.1", cur.RemoteAddr())
	assert.Equal(t, 9000, cur.RemotePort())
	assert.Equal(t, 9001, cur.LocalPort())

	h.Destroy()
	assert.Nil(t, h.Current())

	fresh := h.Init()
	assert.NotSame(t, c, fresh)
	assert.Equal(t, ucclient.Endpoint{}, h.Current().Endpoint())
}

func TestInitWithOverwrites(t *testing.T) {
	h := &ucclient.Holder{}

	first := h.InitWith("10.0.0.1", 1, 2)
	second := h.InitWith("10.0.0.2", 3, 4)

	assert.Same(t, first, second)
	assert.Equal(t, ucclient.Endpoint{RemoteAddr: "10.0.0.2", RemotePort: 3, LocalPort: 4}, h.Current().Endpoint())
}

func TestInitWithAcceptsAnything(t *testing.T) {
	h := &ucclient.Holder{}

	c := h.InitWith("not an address", -1, 70000)
	assert.Equal(t, ucclient.Endpoint{RemoteAddr: "not an address", RemotePort: -1, LocalPort: 70000}, c.Endpoint())
}

func TestInitKeepsConfiguration(t *testing.T) {
	h := &ucclient.Holder{}
	h.InitWith("10.0.0.1", 9000, 9001)

	c := h.Init()
	assert.Equal(t, 9000, c.RemotePort())
}

func TestDetachedClientAfterDestroy(t *testing.T) {
	h := &ucclient.Holder{}
	old := h.InitWith("10.0.0.1", 9000, 9001)

	h.Destroy()
	h.InitWith("10.0.0.9", 1, 1)

	assert.Equal(t, "10.0.0.1", old.RemoteAddr())
	assert.NotSame(t, old, h.Current())
}

func TestDestroyAbsentIsNoop(t *testing.T) {
	destroyed := 0
	h := ucclient.NewHolder(ucclient.Hooks{
		OnDestroy: func(*ucclient.Client) { destroyed++ },
	})

	h.Destroy()
	h.Destroy()
	assert.Nil(t, h.Current())
	assert.Equal(t, 0, destroyed)
}

func TestConcurrentInitCreatesOnce(t *testing.T) {
	var created atomic.Int32
	h := ucclient.NewHolder(ucclient.Hooks{
		OnCreate: func(*ucclient.Client) { created.Add(1) },
	})

	const n = 64
	results := make([]*ucclient.Client, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = h.Init()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestConcurrentConfigureNeverTears(t *testing.T) {
	h := &ucclient.Holder{}
	a := ucclient.Endpoint{RemoteAddr: "10.0.0.1", RemotePort: 1000, LocalPort: 1001}
	b := ucclient.Endpoint{RemoteAddr: "10.0.0.2", RemotePort: 2000, LocalPort: 2001}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if (i+j)%2 == 0 {
					h.Configure(a)
				} else {
					h.Configure(b)
				}
				if j%50 == 0 {
					h.Destroy()
				}
			}
		}(i)
	}

	for i := 0; i < 2000; i++ {
		c := h.Current()
		if c == nil {
			continue
		}
		got := c.Endpoint()
		if got != a && got != b && !got.IsZero() {
			t.Fatalf("torn endpoint %+v", got)
		}
	}
	wg.Wait()
}

func TestHooks(t *testing.T) {
	var events []string
	h := &ucclient.Holder{}
	h.SetHooks(ucclient.Hooks{
		OnCreate:    func(*ucclient.Client) { events = append(events, "create") },
		OnConfigure: func(_ *ucclient.Client, e ucclient.Endpoint) { events = append(events, "configure:"+e.RemoteAddr) },
		OnDestroy:   func(*ucclient.Client) { events = append(events, "destroy") },
	})

	h.Init()
	h.Init()
	h.InitWith("10.0.0.1", 1, 2)
	h.Destroy()
	h.InitWith("10.0.0.2", 1, 2)

	assert.Equal(t, []string{
		"create",
		"configure:10.0.0.1",
		"destroy",
		"create",
		"configure:10.0.0.2",
	}, events)
}

func TestPackageLevelHandle(t *testing.T) {
	t.Cleanup(ucclient.Destroy)

	c := ucclient.Init()
	assert.Same(t, c, ucclient.Current())
	assert.Same(t, ucclient.Default().Current(), ucclient.Current())

	ucclient.InitWith("10.0.0.1", 9000, 9001)
	assert.Equal(t, "10.0.0.1", ucclient.Current().RemoteAddr())

	ucclient.Destroy()
	assert.Nil(t, ucclient.Current())
	assert.Equal(t, ucclient.Endpoint{}, ucclient.Init().Endpoint())
}

func TestAddHooksChains(t *testing.T) {
	var first, second []string
	h := ucclient.NewHolder(ucclient.Hooks{
		OnCreate: func(*ucclient.Client) { first = append(first, "create") },
	})
	h.AddHooks(ucclient.Hooks{
		OnCreate:  func(*ucclient.Client) { second = append(second, "create") },
		OnDestroy: func(*ucclient.Client) { second = append(second, "destroy") },
	})

	h.InitWith("10.0.0.1", 1, 2)
	h.Destroy()

	assert.Equal(t, []string{"create"}, first)
	assert.Equal(t, []string{"create", "destroy"}, second)
}
