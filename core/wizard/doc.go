// Package wizard models the interactive certificate setup flow as a pure
// state machine. Callers feed answer strings in and get a resolver.Request
// out; prompts, terminals, and re-asking on bad input stay in the CLI
// layer. This keeps the decision tree testable without any input mechanism.
package wizard
