package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistchat/internal/logging"
)

// Sender performs the single outbound call for a submission.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, text string) (string, error)

// Send calls f(ctx, text).
func (f SenderFunc) Send(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Submission is an accepted user input waiting for its reply.
type Submission struct {
	MessageID uint64 // ID of the appended user message
	Text      string // trimmed text, identical to what the transcript shows
}

// Outcome is the result of delivering a Submission: either Reply is set and
// Err is nil, or Err describes the delivery failure.
type Outcome struct {
	Submission Submission
	Reply      string
	Err        error
	Elapsed    time.Duration
}

// OK reports whether the submission was delivered and answered.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Text is the assistant content the outcome produces.
func (o Outcome) Text() string {
	if o.Err != nil {
		return FallbackText
	}
	return o.Reply
}

// Flow moves a conversation through Idle -> Pending -> Idle.
//
// Begin and Complete mutate the store and must run on the loop that owns it.
// Deliver only talks to the Sender, so it is safe to run elsewhere.
type Flow struct {
	store  *Store
	sender Sender
}

// NewFlow binds a store to the sender used for outbound calls.
func NewFlow(store *Store, sender Sender) *Flow {
	return &Flow{store: store, sender: sender}
}

// Store returns the conversation this flow appends to.
func (f *Flow) Store() *Store {
	return f.store
}

// Begin accepts input when the flow is idle and the trimmed input is not
// empty. It appends the user message and marks the store pending. The second
// return value is false when the input was rejected; in that case nothing
// changed.
func (f *Flow) Begin(input string) (Submission, bool) {
	if f.store.pending {
		logging.SessionDebug("submission rejected: request already pending")
		return Submission{}, false
	}
	text := strings.TrimSpace(input)
	if text == "" {
		return Submission{}, false
	}

	msg := f.store.Append(RoleUser, text)
	f.store.pending = true
	logging.SessionDebug("submission %d accepted (%d chars)", msg.ID, len(text))

	return Submission{MessageID: msg.ID, Text: text}, true
}

// Deliver issues exactly one outbound call for sub. It never touches the store.
func (f *Flow) Deliver(ctx context.Context, sub Submission) (out Outcome) {
	out.Submission = sub
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Reply = ""
			out.Err = fmt.Errorf("sender panicked: %v", r)
		}
		out.Elapsed = time.Since(start)
	}()

	if f.sender == nil {
		out.Err = fmt.Errorf("no sender configured")
		return out
	}

	reply, err := f.sender.Send(ctx, sub.Text)
	if err != nil {
		out.Err = err
		return out
	}
	out.Reply = reply
	return out
}

// Complete appends the assistant message for o and returns the flow to Idle.
// The pending flag is cleared whatever the outcome.
func (f *Flow) Complete(o Outcome) Message {
	defer func() { f.store.pending = false }()

	if o.Err != nil {
		logging.SessionWarn("submission %d failed after %v: %v", o.Submission.MessageID, o.Elapsed, o.Err)
	} else {
		logging.Session("submission %d answered in %v", o.Submission.MessageID, o.Elapsed)
	}
	return f.store.Append(RoleAssistant, o.Text())
}

// Submit runs the whole flow synchronously. It returns false, with a zero
// Outcome, when the input was rejected.
func (f *Flow) Submit(ctx context.Context, input string) (Outcome, bool) {
	sub, ok := f.Begin(input)
	if !ok {
		return Outcome{}, false
	}
	out := f.Deliver(ctx, sub)
	f.Complete(out)
	return out, true
}
