package conversation

import "time"

// Store is the ordered message sequence plus the submission-in-progress flag.
//
// A Store is owned by a single event loop. It carries no lock: every mutation
// (Append, and the pending transitions made by Flow) must happen on that loop.
type Store struct {
	messages []Message
	nextID   uint64
	pending  bool
	now      func() time.Time
}

// StoreOption configures a Store at construction time.
type StoreOption func(*storeOptions)

type storeOptions struct {
	now      func() time.Time
	greeting string
}

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithGreeting replaces the seeded assistant greeting.
func WithGreeting(text string) StoreOption {
	return func(o *storeOptions) {
		if text != "" {
			o.greeting = text
		}
	}
}

// NewStore returns a conversation seeded with one assistant greeting.
func NewStore(opts ...StoreOption) *Store {
	o := storeOptions{now: time.Now, greeting: Greeting}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{nextID: 1, now: o.now}
	s.Append(RoleAssistant, o.greeting)
	return s
}

// Append adds a message to the end of the conversation and returns it.
// IDs come from a monotonic counter and are never reused.
func (s *Store) Append(role Role, content string) Message {
	msg := Message{
		ID:      s.nextID,
		Role:    role,
		Content: content,
		Time:    s.now(),
	}
	s.nextID++
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the conversation in order.
func (s *Store) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// Last returns the most recent message.
func (s *Store) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Pending reports whether a submission is outstanding.
func (s *Store) Pending() bool {
	return s.pending
}
