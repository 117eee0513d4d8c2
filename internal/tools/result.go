package tools

import "fmt"

// Block is a single text content block of a tool response.
type Block struct {
	Text string
}

// Failure is an operational error inside a tool, such as a rejected Gmail
// call. It is reported to the client as text, not as a protocol error.
type Failure struct {
	// Action describes what the tool was doing, e.g. "sending email".
	Action string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("Error %s: %v", f.Action, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a tool handler: either content blocks or a Failure.
type Result struct {
	blocks  []Block
	failure *Failure
}

// TextResult returns a successful result with one block per text.
func TextResult(texts ...string) Result {
	blocks := make([]Block, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, Block{Text: t})
	}
	return Result{blocks: blocks}
}

// FailureResult returns an operational failure.
func FailureResult(action string, err error) Result {
	return Result{failure: &Failure{Action: action, Err: err}}
}

// Failure returns the operational failure, or nil on success.
func (r Result) Failure() *Failure {
	return r.failure
}

// Failed reports whether the result carries a Failure.
func (r Result) Failed() bool {
	return r.failure != nil
}

// Render converts the result into response blocks. A Failure becomes a single
// block reading "Error {action}: {err}".
func (r Result) Render() []Block {
	if r.Failed() {
		return []Block{{Text: r.failure.Error()}}
	}
	out := make([]Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}
