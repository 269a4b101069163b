// Package ucclient is the access point of the Universal Controller client
// library. It keeps one process-wide Client holding the controller address,
// the controller port and the local port.
//
// Applications that prefer to pass the handle explicitly can create their own
// Holder; the package-level functions below operate on a shared default one.
package ucclient

var std Holder

// Default returns the process-wide holder used by the package-level functions.
func Default() *Holder {
	return &std
}

// Init returns the process-wide client, creating an unconfigured one on first use.
func Init() *Client {
	return std.Init()
}

// InitWith creates the process-wide client if needed and overwrites its settings.
func InitWith(remoteAddr string, remotePort, localPort int) *Client {
	return std.InitWith(remoteAddr, remotePort, localPort)
}

// Configure is InitWith taking an Endpoint.
func Configure(e Endpoint) *Client {
	return std.Configure(e)
}

// Current returns the process-wide client, or nil if none is installed.
func Current() *Client {
	return std.Current()
}

// Destroy uninstalls the process-wide client.
func Destroy() {
	std.Destroy()
}
