// Package rop runs pipeline stages as Railway-Oriented fan-out/fan-in over
// Result[T] values.
//
// Highlights:
// - Result[T]: a value or the error that replaced it, tagged with an id and creation time
// - Try: lift a func (Out, error) into an Engine
// - Locomotive: one worker line pulling inputs and pushing outputs
// - Turnout: several lines under an errgroup; the first failure stops the rest
// - Stage: feed a slice, wait for every line (the barrier), return outputs or the first error
package rop
