package ucclient

import "sync"

// Client is the handle of the Universal Controller library. Instances are
// created only by a Holder; a Client kept after Holder.Destroy remains a
// readable but detached value.
type Client struct {
	mu       sync.RWMutex
	endpoint Endpoint
}

// Endpoint returns a consistent snapshot of all three settings.
func (c *Client) Endpoint() Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// RemoteAddr returns the controller address.
func (c *Client) RemoteAddr() string {
	return c.Endpoint().RemoteAddr
}

// RemotePort returns the controller port.
func (c *Client) RemotePort() int {
	return c.Endpoint().RemotePort
}

// LocalPort returns the client-side port.
func (c *Client) LocalPort() int {
	return c.Endpoint().LocalPort
}

// Configured reports whether any setting differs from its zero value.
func (c *Client) Configured() bool {
	return !c.Endpoint().IsZero()
}

func (c *Client) set(e Endpoint) {
	c.mu.Lock()
	c.endpoint = e
	c.mu.Unlock()
}
