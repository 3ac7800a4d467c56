package stubserver

import (
	"fmt"
	"strings"
)

// ReplyFunc turns a user message into the stub's answer.
type ReplyFunc func(message string) string

type topic struct {
	keywords []string
	reply    string
}

var topics = []topic{
	{[]string{"flight", "hotel", "train", "travel", "book"}, "Sure, I can help with travel. Where are you departing from, and on what date?"},
	{[]string{"pizza", "food", "restaurant", "order", "meal"}, "Happy to help with food. Which restaurant or cuisine would you like?"},
	{[]string{"cab", "taxi", "ride", "uber"}, "I can arrange a ride. What is your pickup location?"},
	{[]string{"appointment", "meeting", "doctor", "schedule"}, "Let's get that scheduled. What day and time suit you?"},
	{[]string{"remind", "reminder", "alert"}, "I'll set a reminder. When should I notify you?"},
	{[]string{"weather"}, "I don't have live weather data in development mode, but in production I would look that up for you."},
	{[]string{"music", "movie", "song", "game"}, "Great choice. Any particular genre or artist you're in the mood for?"},
	{[]string{"buy", "shop", "price", "product"}, "I can compare prices for you. What product are you looking for?"},
	{[]string{"email", "call", "message", "contact"}, "Who would you like to contact, and what should the message say?"},
}

// DefaultReply answers with a canned, keyword-matched response and falls
// back to echoing the message.
func DefaultReply(message string) string {
	lower := strings.ToLower(message)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.reply
			}
		}
	}
	return fmt.Sprintf("You said: %q. (stub backend)", message)
}
