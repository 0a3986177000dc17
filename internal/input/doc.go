// Package input routes pointer and wheel events from a surface root to the
// knobs registered on it.
//
// One [Dispatcher] is built per surface root. It owns the gesture [Session]
// (the knob currently held by the pointer), looks targets up in a
// [knob.Registry], and drives the knobs through the gesture translator.
//
// Event producers implement [Source]. [Loop] is a channel-backed Source for
// producers that live on other goroutines: events are posted from anywhere
// and handled one at a time on the goroutine running [Loop.Run].
package input
