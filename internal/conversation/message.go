// Package conversation holds the chat transcript and the submission flow that
// feeds it. The transcript is append-only: messages are never edited, removed
// or reordered once added.
package conversation

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TimestampLayout is the clock format shown next to each message.
const TimestampLayout = "15:04:05"

// FallbackText replaces the assistant reply whenever delivery fails.
const FallbackText = "Sorry, I'm having trouble connecting to the server. Please try again."

// Message is a single turn in the conversation.
type Message struct {
	ID      uint64
	Role    Role
	Content string // verbatim, whitespace preserved
	Time    time.Time
}

// Timestamp returns the human-readable creation time.
func (m Message) Timestamp() string {
	return m.Time.Format(TimestampLayout)
}

// IsUser reports whether the message was authored by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Greeting is the assistant message every new conversation starts with.
const Greeting = `Hello! I'm your AI assistant. I can help you with a wide range of tasks including:

🛫 **Travel & Booking** - Flight reservations, hotel bookings, train tickets
🍕 **Food Orders** - Restaurant reservations, food delivery, meal planning
🚗 **Transportation** - Cab bookings, ride sharing, travel arrangements
📅 **Appointments** - Meeting scheduling, doctor visits, calendar management
🎵 **Entertainment** - Music, movies, games, and media recommendations
🛒 **Shopping** - Product search, online purchases, price comparisons
⏰ **Reminders** - Alerts, notifications, task management
ℹ️ **Information** - Weather, facts, general questions, research
📋 **Calendar & Scheduling** - Event planning, time management
📱 **Communication** - Messages, calls, emails, contact management

What would you like me to help you with today?`
