// Package loop implements the task loop controller: bounded-iteration
// execution of autonomous tasks with pause/resume against the approval gate.
// All suspension state (iteration, accumulated context) is persisted between
// reasoning-agent turns – the controller holds nothing on a call stack.
package loop
