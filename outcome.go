package fileops

// OutcomeKind says what the transport should do with a processed line.
type OutcomeKind int

const (
	// OutcomeEmit means the line produced a response to be written.
	OutcomeEmit OutcomeKind = iota
	// OutcomeSuppress means the line was understood and needs no reply.
	OutcomeSuppress
	// OutcomeDrop means the line was ignored.
	OutcomeDrop
)

// String returns the lower-case name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmit:
		return "emit"
	case OutcomeSuppress:
		return "suppress"
	case OutcomeDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Outcome is the result of dispatching one input line. Response is set only
// for OutcomeEmit and Reason only for OutcomeDrop.
type Outcome struct {
	Kind     OutcomeKind
	Response *Response
	Reason   string
}

// Emit returns an Outcome that writes resp.
func Emit(resp *Response) Outcome {
	return Outcome{Kind: OutcomeEmit, Response: resp}
}

// Suppress returns an Outcome that writes nothing for a handled message.
func Suppress() Outcome {
	return Outcome{Kind: OutcomeSuppress}
}

// Drop returns an Outcome that ignores the line for the given reason.
func Drop(reason string) Outcome {
	return Outcome{Kind: OutcomeDrop, Reason: reason}
}
