// Package normalize reduces raw chat messages to the compact textual
// transcript consumed by the LLM analysis stages.
package normalize

import (
	"fmt"
	"strings"

	"github.com/kanda-lab/chatreport/internal/chatlog"
)

const (
	// unknownSender is substituted when a valid message has no sender name.
	unknownSender = "unknown user"
	// noRecordsStats is the statistics line for input with no valid messages.
	noRecordsStats = "no valid chat records"

	timeLayout = "15:04:05"
)

// Normalize filters the given messages down to valid text messages and
// renders them, one line each in their original order, as
// "[HH:MM:SS] sender: content". It returns the transcript and a one-line
// statistics summary.
//
// Invalid messages (wrong kind, blank content, missing timestamp) are
// silently dropped, never surfaced as errors.
func Normalize(messages []chatlog.ChatMessage) (transcript, stats string) {
	var lines []string
	senders := make(map[string]struct{})

	for _, m := range messages {
		if !isValid(m) {
			continue
		}
		lines = append(lines, formatMessage(m))
		senders[m.SenderID] = struct{}{}
	}

	if len(lines) == 0 {
		return "", noRecordsStats
	}

	stats = fmt.Sprintf("statistics: %d total messages, %d valid, %d participants",
		len(messages), len(lines), len(senders))
	return strings.Join(lines, "\n"), stats
}

// isValid reports whether a message carries analyzable text: kind is text,
// content is non-blank after trimming, and the timestamp is present.
func isValid(m chatlog.ChatMessage) bool {
	return m.Kind == chatlog.KindText &&
		strings.TrimSpace(m.Content) != "" &&
		!m.Timestamp.IsZero()
}

func formatMessage(m chatlog.ChatMessage) string {
	sender := strings.TrimSpace(m.SenderName)
	if sender == "" {
		sender = unknownSender
	}
	return fmt.Sprintf("[%s] %s: %s",
		m.Timestamp.Format(timeLayout), sender, strings.TrimSpace(m.Content))
}
