// Package finch approximates a target image by painting textured brush
// strokes onto a blank canvas. Strokes are proposed one at a time by a
// stochastic hill climber: each proposal samples a position from the
// difference between canvas and target, takes its color from the target
// and its orientation from the target's gradient field, and is kept only
// if it lowers the difference score.
//
// Canvases and targets are OpenCV matrices in BGR channel order. Anything
// that crosses a goroutine boundary (snapshots for the viewer, captured GIF
// frames) is copied into Go-owned image values first.
package finch
