// Package viz renders a running simulation in the terminal.
//
// [Model] is a Bubble Tea program that advances the simulator once per
// tick and draws every body and its trail on a Braille [Canvas]. Each
// terminal cell holds 2x4 sub-pixels, which are roughly square, so the
// orbit keeps its shape.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial configuration
//	+/-   - Zoom in/out
//	↑/↓   - Double/halve steps per frame
//	T     - Cycle colour themes
//	S     - Save an SVG snapshot of the current frame
//	G     - Start/stop GIF recording
//	?     - Show help overlay
//	Q     - Quit
package viz
