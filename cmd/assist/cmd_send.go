package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"assistchat/internal/backend"
	"assistchat/internal/conversation"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errDeliveryFailed makes `send` exit non-zero after the fallback is printed.
var errDeliveryFailed = errors.New("delivery failed")

// sendCmd submits one message without starting the TUI
var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send a single message and print the reply",
	Long: `Sends one message through the same submission flow the chat UI uses and
prints the exchange. Exits with status 1 when the backend could not be
reached or returned an unusable reply.

Example:
  assist send "Book a flight to Paris."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	return sendMessage(cmd.Context(), cmd.OutOrStdout(), newFlow(cfg), strings.Join(args, " "))
}

func sendMessage(ctx context.Context, w io.Writer, flow *conversation.Flow, text string) error {
	out, ok := flow.Submit(ctx, text)
	if !ok {
		return fmt.Errorf("nothing to send: message is empty")
	}

	msgs := flow.Store().Messages()
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	faint := color.New(color.Faint)

	for _, m := range msgs[len(msgs)-2:] {
		faint.Fprintf(w, "[%s] ", m.Timestamp())
		if m.IsUser() {
			cyan.Fprint(w, "You: ")
		} else {
			green.Fprint(w, "Assistant: ")
		}
		fmt.Fprintln(w, m.Content)
	}

	if !out.OK() {
		if logger != nil {
			logger.Warn("Delivery failed",
				zap.String("kind", string(backend.KindOf(out.Err))),
				zap.Duration("elapsed", out.Elapsed),
				zap.Error(out.Err))
		}
		return fmt.Errorf("%w: %v", errDeliveryFailed, out.Err)
	}
	return nil
}
