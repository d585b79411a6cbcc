// Package mockapi is an in-process stand-in for the MovieFlix backend. It
// serves the health endpoints pinged by the keep-alive service and the
// authenticated catalogue endpoints exercised by the stress harness.
//
// Usage:
//
//	srv := httptest.NewServer(mockapi.NewHandler(mockapi.Options{}))
//	defer srv.Close()
package mockapi
