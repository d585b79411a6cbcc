// Package httpserver runs the optional status endpoint of the keep-alive
// service: a validated listen address, fixed timeouts and graceful shutdown.
package httpserver
