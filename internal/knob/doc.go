// Package knob provides rotary input controls: a bounded numeric value kept
// in lockstep with a display angle.
//
// The package defines the value model and its entry points:
//
//   - [Knob]: one rotary control with range, step and derived angle
//   - [ValueToAngle] / [AngleToValue]: the linear value/angle mapping
//   - [Registry]: id to knob lookup shared by the input listeners
//   - [Renderer]: drawing collaborator called after every mutation
//
// # Angles
//
// Angles are degrees measured counterclockwise from straight down on the
// drawing surface. A track fraction f places the travel between
// MinAngle = (360-360f)/2 and MaxAngle = 360-MinAngle. The minimum value sits
// at MaxAngle and the maximum value at MinAngle, so increasing values move
// clockwise on screen.
//
// # Thread Safety
//
// Knob and Registry are NOT thread-safe. They are owned by a single event
// loop; producers on other goroutines must hand events to that loop.
package knob
