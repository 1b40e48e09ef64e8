// Package gate implements the human-in-the-loop approval layer.  Sensitive
// actions are captured as durable approval records, decided by an external
// actor, then executed one at a time in strict arrival order so that side
// effects can never race.
package gate
