// Package iierr defines the encoder's named error conditions
// (spec.md §7): situations the pipeline can detect and report
// precisely, as distinct from the generic wrapped errors that bubble up
// from I/O and library calls.
package iierr

import "fmt"

// MalformedMediaError reports that an input media file could not be
// decoded into the form the pipeline expects (corrupt WAV header, wrong
// frame dump size, truncated file).
type MalformedMediaError struct {
	Path   string
	Reason string
}

func (e *MalformedMediaError) Error() string {
	return fmt.Sprintf("iierr: malformed media %s: %s", e.Path, e.Reason)
}

// SymbolMissError reports that the decoder's symbol table is missing an
// entry address the opcode table needs to resolve.
type SymbolMissError struct {
	Symbol string
}

func (e *SymbolMissError) Error() string {
	return fmt.Sprintf("iierr: symbol table missing required entry %q", e.Symbol)
}

// CacheCorruptError reports a distance-table cache file that failed to
// decode; callers treat this as non-fatal (log and rebuild), but the
// type exists so they can tell it apart from a genuine I/O failure.
type CacheCorruptError struct {
	Path string
	Err  error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("iierr: corrupt distance table cache %s: %v", e.Path, e.Err)
}

func (e *CacheCorruptError) Unwrap() error { return e.Err }

// SchedulerUnderflowError is explicitly *not* an error condition per
// spec.md §7 ("not an error"): it is defined here as a sentinel value
// for callers that want to distinguish a converged frame from an
// exhausted input, logged at most at Info level rather than propagated.
type SchedulerUnderflowError struct {
	Frame int
}

func (e *SchedulerUnderflowError) Error() string {
	return fmt.Sprintf("iierr: scheduler ran out of improving writes for frame %d", e.Frame)
}
