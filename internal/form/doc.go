// Package form implements the subscription form component.
//
// A Controller is one rendered instance of the widget. It owns a single
// domain.FormState and mutates it only through the pure transition functions
// in transitions.go. The submit path validates the address, performs one
// outbound request through a Subscriber, and maps the result onto exactly one
// of four feedback messages. A successful subscription arms a single-shot
// reset timer that clears the feedback after the configured delay.
//
// Timers and in-flight requests are scoped to the Controller: Close cancels
// both and any update arriving afterwards is dropped.
//
// By default the loading flag is left set after a validation failure or a
// transport failure, matching the widget this package reproduces. Set
// Options.ResetSubmittingOnFailure to clear it on those paths as well. The
// duplicate-submission guard does not depend on the flag.
package form
