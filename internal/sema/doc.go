// Package sema is the type and safety inference pass.
//
// The pass walks every function body in source order, computes a types.Info
// for each expression and keeps a layered scope of local bindings plus a
// persistent set of branch facts. Facts are derived from if/while conditions
// (DeriveFacts) and narrow identifiers inside the guarded code.
//
// In strict mode the walk proves:
//
//   - division and modulo denominators are non-zero;
//   - + - * stay inside the result type's range (interval arithmetic);
//   - array indices stay below the initialized length;
//   - nullable pointers are guarded before use;
//   - matches over unions are exhaustive.
//
// Type, arity and condition checks run regardless of mode. The first
// violation is returned as a *diag.Diagnostic and the walk stops.
package sema
