// Package probe performs a single bounded HTTP GET against a target and
// classifies the outcome.
//
// A probe succeeds when the target answers with a 2xx status. Every other
// outcome is returned as an *Error whose kind is one of ErrNetwork,
// ErrTimeout or ErrHTTPStatus:
//
//	res, err := prober.Probe(ctx, target)
//	switch {
//	case err == nil:
//	    // 2xx
//	case errors.Is(err, probe.ErrTimeout):
//	    // exceeded the request timeout
//	}
package probe
