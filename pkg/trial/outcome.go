package trial

// Outcome is the terminal result of one executed trial body. The zero value
// is a pass.
type Outcome struct {
	failed  bool
	message string
	stack   string
}

// Pass returns a passing outcome.
func Pass() Outcome {
	return Outcome{}
}

// Fail returns a failing outcome carrying the given message.
func Fail(message string) Outcome {
	return Outcome{failed: true, message: message}
}

// FailWithStack returns a failing outcome carrying a message and the call
// stack captured where the failure surfaced. The engine uses this for panics
// recovered at the execution boundary.
func FailWithStack(message, stack string) Outcome {
	return Outcome{failed: true, message: message, stack: stack}
}

// Failed reports whether the trial failed.
func (o Outcome) Failed() bool {
	return o.failed
}

// Message returns the failure message. Empty for passing outcomes.
func (o Outcome) Message() string {
	return o.message
}

// Stack returns the captured call stack, if any. Only panic failures carry
// one.
func (o Outcome) Stack() string {
	return o.stack
}

// String makes Outcome satisfy the fmt.Stringer interface.
func (o Outcome) String() string {
	if !o.failed {
		return "passed"
	}
	if o.message == "" {
		return "failed"
	}
	return "failed: " + o.message
}
