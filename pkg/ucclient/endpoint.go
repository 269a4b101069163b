package ucclient

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	// ErrInvalidAddr is returned by Validate when the remote address is not an IPv4 literal.
	ErrInvalidAddr = errors.New("invalid remote address")
	// ErrInvalidPort is returned by Validate when a port is outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
)

// Endpoint is the controller address the client talks to plus the local port
// it binds. Values are stored verbatim; nothing checks them unless Validate is called.
type Endpoint struct {
	RemoteAddr string `yaml:"remote_addr" json:"remote_addr"` // IPv4 address of the controller
	RemotePort int    `yaml:"remote_port" json:"remote_port"` // Controller port
	LocalPort  int    `yaml:"local_port" json:"local_port"`   // Client-side port
}

// IsZero reports whether the endpoint was never configured.
func (e Endpoint) IsZero() bool {
	return e == Endpoint{}
}

// RemoteHostPort returns the controller address in host:port form.
func (e Endpoint) RemoteHostPort() string {
	return net.JoinHostPort(e.RemoteAddr, strconv.Itoa(e.RemotePort))
}

// LocalHostPort returns the local bind address in :port form.
func (e Endpoint) LocalHostPort() string {
	return net.JoinHostPort("", strconv.Itoa(e.LocalPort))
}

func (e Endpoint) String() string {
	return fmt.Sprintf("remote=%s local=%d", e.RemoteHostPort(), e.LocalPort)
}

// Validate checks that RemoteAddr is an IPv4 literal and both ports are usable.
func (e Endpoint) Validate() error {
	ip := net.ParseIP(strings.TrimSpace(e.RemoteAddr))
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddr, e.RemoteAddr)
	}
	if !isPort(e.RemotePort) {
		return fmt.Errorf("%w: remote port %d", ErrInvalidPort, e.RemotePort)
	}
	if !isPort(e.LocalPort) {
		return fmt.Errorf("%w: local port %d", ErrInvalidPort, e.LocalPort)
	}
	return nil
}

func isPort(p int) bool {
	return p > 0 && p < 65536
}

func isPortNumber(s string) bool {
	port, err := strconv.Atoi(s)
	return err == nil && isPort(port)
}

// ParseHostPort splits an address of the form "host:port", "host" or "port".
// A bare port keeps defaultHost; a bare host yields port 0.
func ParseHostPort(addr, defaultHost string) (host string, port int, err error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return defaultHost, 0, nil
	}

	if strings.Contains(addr, ":") {
		h, p, err := net.SplitHostPort(addr)
		if err != nil {
			return "", 0, fmt.Errorf("parse %q: %w", addr, err)
		}
		if h == "" {
			h = defaultHost
		}
		if !isPortNumber(p) {
			return "", 0, fmt.Errorf("%w: %q", ErrInvalidPort, p)
		}
		port, _ := strconv.Atoi(p)
		return h, port, nil
	}

	if isPortNumber(addr) {
		port, _ := strconv.Atoi(addr)
		return defaultHost, port, nil
	}

	return addr, 0, nil
}
