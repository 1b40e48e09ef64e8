// Package approval defines the durable record kept for every sensitive-action
// request.  Records are retained permanently for audit – terminal states are
// never deleted by the core.
package approval
