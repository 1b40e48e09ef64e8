// Package employee provides the orchestration core that lets an external,
// per-turn-invoked reasoning agent carry out multi-step tasks autonomously
// while gating every sensitive step behind explicit human approval.
//
// The core is a pair of crash-recoverable state machines – the bounded task
// loop and the durable, sequentially executed approval queue – plus the
// suspension hook that tells the host whether the agent may exit.  It is
// designed to be embedded in host applications via the Service façade:
//
//	srv := employee.New(employee.WithExecutor(dispatch))
//	record, _ := srv.Loop().Start(ctx, &loop.StartInput{
//		Prompt:             "triage today's inbox",
//		CompletionStrategy: task.StrategyPromise,
//		CompletionToken:    "DONE",
//		MaxIterations:      10,
//	})
//	decision, _ := srv.Hook().Check(ctx, record.ID)
//
// Rendering, scheduling, watchers and third-party API clients live outside
// this module; the core only tracks state and enforces gates.
package employee
