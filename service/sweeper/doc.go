// Package sweeper implements the periodic maintenance pass over approvals and
// tasks.  The core imposes no scheduling of its own – an external trigger (or
// the optional Start ticker) invokes Sweep every few minutes.
package sweeper
