// Package trace records what a check run is doing: which units are being
// decoded and which pass each one is in.
//
// Enable tracing via command-line flags:
//
//	tuffcheck check --trace=- --trace-level=detail trees/
//
// Implementations:
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: stream + ring
//
// Levels select scopes: phase keeps driver and unit spans, detail adds the
// sema and borrow passes, debug adds one span per checked function.
//
// Tracers travel through the driver in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "sema", parentID)
//	defer span.End("")
package trace
