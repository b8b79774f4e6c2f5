package harness

// Trace entry types.
const (
	EntryInvoke = "invoke"
	EntryEvent  = "event"
)

// TraceEvent is one trace entry: either a gesture the scenario invoked or a
// notification the grid emitted.
type TraceEvent struct {
	Type   string `json:"type"` // "invoke" or "event"
	Action string `json:"action,omitempty"`
	Args   any    `json:"args,omitempty"`
	Error  string `json:"error,omitempty"` // error code of a failed gesture
	Event  string `json:"event,omitempty"`
	Token  string `json:"token,omitempty"` // server request token
	Seq    int64  `json:"seq"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every gesture behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains the gestures and notifications in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvokeTrace adds a gesture to the trace.
func (r *Result) AddInvokeTrace(action string, args any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EntryInvoke,
		Action: action,
		Args:   args,
		Seq:    seq,
	})
}

// AddEventTrace adds a grid notification to the trace.
func (r *Result) AddEventTrace(event, token string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:  EntryEvent,
		Event: event,
		Token: token,
		Seq:   seq,
	})
}
