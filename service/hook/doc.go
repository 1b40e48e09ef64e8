// Package hook implements the suspension hook the host calls on every
// reasoning-agent turn to decide whether the agent may exit or must continue
// with re-injected context.
package hook
