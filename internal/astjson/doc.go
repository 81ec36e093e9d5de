// Package astjson loads resolver output (one JSON document per unit) into the
// ast arena. The document is already name-resolved; the decoder only checks
// shape: known node kinds, required fields and numbers that fit their slots.
package astjson
