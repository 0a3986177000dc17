// Package gesture turns raw pointer and wheel samples into signed value
// deltas.
//
// Drag deltas are shaped by a speed factor: the faster the pointer moves
// between samples, the more steps a single sample is worth. The factor is
// stepTime*step/elapsed and never drops below one step. Wheel ticks move by
// one step, or by the speed-shaped amount while the modifier is held.
//
// Translators have no side effects; callers persist [Result.Sample] as the
// previous sample for the next call.
package gesture
