// Package tui hosts knobs on a terminal board.
//
//   - [Board]: a knob.Container that lays tiles out in a grid and hit-tests
//     mouse cells back to knob surfaces
//   - [Canvas]: braille canvas with per-cell colors
//   - [Model]: bubbletea model translating mouse messages into input events
//
// Knob values only follow the pointer and the wheel. Keys drive the host:
//
//	Drag / Wheel    - Adjust the knob under the pointer
//	Ctrl+Wheel      - Speed-scaled adjustment
//	Tab / Shift+Tab - Move the focus highlight
//	T               - Cycle color themes
//	Q               - Quit
//
// # Thread Safety
//
// The model is only touched by the bubbletea event loop. Other goroutines
// reach it through [Sender].
package tui
