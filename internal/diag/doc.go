// Package diag defines the diagnostic model shared by the checking passes,
// the driver and the renderers.
//
// # Contract
//
// A checker reports at most one Diagnostic per unit: the first violation
// found in a deterministic pre-order walk. Every Diagnostic carries four
// load-bearing fields that downstream tooling (JSON output, certificates)
// relies on:
//
//   - Code    – stable identifier; Code.ID() yields strings such as
//     E_SAFETY_DIV_BY_ZERO or E_BORROW_USE_AFTER_MOVE.
//   - Reason  – what rule was violated, naming the offending identifier or
//     the computed witness value when there is one.
//   - Fix     – an actionable suggestion.
//   - Primary – resolver location {file, line, column}.
//
// Message is the short headline shown first. When a producer leaves Reason
// or Fix empty, the catalogue defaults from codes.go are used, so the
// contract holds for every code.
//
// # Families
//
// Codes are grouped by numeric range:
//
//	3000-3099  type rules (mismatch, arity, conditions)
//	3100-3199  numeric/structural safety
//	3500-3599  ownership and borrowing
//	4000-4099  input, IO and project configuration
//
// A single check never mixes the safety and borrow families: the borrow pass
// only runs after the safety pass accepted the unit.
//
// # Scope
//
// Package diag does not format or print. Rendering lives in internal/diagfmt;
// orchestration and caching live in internal/driver.
package diag
