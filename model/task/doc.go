// Package task defines the durable record tracked for every autonomous task
// together with its lifecycle transitions.  Records are mutated only through
// the loop controller and persisted after every transition.
package task
