// Package endpoint defines the targets pinged by the keep-alive service and
// tracks their observed health and response time.
package endpoint
