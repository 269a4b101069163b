package ucclient

import (
	"sync"
	"sync/atomic"
)

// Hooks observe handle lifecycle transitions. They run while the holder lock
// is held, so a hook must not call back into the same Holder.
type Hooks struct {
	OnCreate    func(c *Client)
	OnConfigure func(c *Client, e Endpoint)
	OnDestroy   func(c *Client)
}

// Holder owns at most one live Client. The zero value is ready to use and
// starts out absent.
//
// Reads of the installed handle go through an atomic pointer; creation,
// reconfiguration and teardown are all serialized on mu, so a configure can
// never interleave with a destroy or with another configure.
type Holder struct {
	mu       sync.Mutex
	instance atomic.Pointer[Client]
	hooks    Hooks
}

// NewHolder returns an empty holder reporting transitions to hooks.
func NewHolder(hooks Hooks) *Holder {
	return &Holder{hooks: hooks}
}

// SetHooks replaces the lifecycle hooks, dropping any set before.
func (h *Holder) SetHooks(hooks Hooks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = hooks
}

// AddHooks chains hooks after the ones already set; both sets keep firing.
func (h *Holder) AddHooks(hooks Hooks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = chainHooks(h.hooks, hooks)
}

func chainHooks(a, b Hooks) Hooks {
	return Hooks{
		OnCreate: func(c *Client) {
			if a.OnCreate != nil {
				a.OnCreate(c)
			}
			if b.OnCreate != nil {
				b.OnCreate(c)
			}
		},
		OnConfigure: func(c *Client, e Endpoint) {
			if a.OnConfigure != nil {
				a.OnConfigure(c, e)
			}
			if b.OnConfigure != nil {
				b.OnConfigure(c, e)
			}
		},
		OnDestroy: func(c *Client) {
			if a.OnDestroy != nil {
				a.OnDestroy(c)
			}
			if b.OnDestroy != nil {
				b.OnDestroy(c)
			}
		},
	}
}

// Init returns the installed client, creating an unconfigured one if the
// holder is absent. Concurrent first calls construct exactly one Client.
func (h *Holder) Init() *Client {
	if c := h.instance.Load(); c != nil {
		return c
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initLocked()
}

// InitWith ensures a client exists and then overwrites all of its settings,
// even if it was already configured with different values. Inputs are not
// validated.
func (h *Holder) InitWith(remoteAddr string, remotePort, localPort int) *Client {
	return h.Configure(Endpoint{
		RemoteAddr: remoteAddr,
		RemotePort: remotePort,
		LocalPort:  localPort,
	})
}

// Configure is InitWith taking an Endpoint.
func (h *Holder) Configure(e Endpoint) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.initLocked()
	c.set(e)
	if h.hooks.OnConfigure != nil {
		h.hooks.OnConfigure(c, e)
	}
	return c
}

// Current returns the installed client, or nil when the holder is absent.
func (h *Holder) Current() *Client {
	return h.instance.Load()
}

// Destroy uninstalls the current client. The next Init creates a fresh,
// unconfigured one. Destroying an absent holder does nothing.
func (h *Holder) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.instance.Swap(nil)
	if c != nil && h.hooks.OnDestroy != nil {
		h.hooks.OnDestroy(c)
	}
}

func (h *Holder) initLocked() *Client {
	if c := h.instance.Load(); c != nil {
		return c
	}
	c := &Client{}
	h.instance.Store(c)
	if h.hooks.OnCreate != nil {
		h.hooks.OnCreate(c)
	}
	return c
}
