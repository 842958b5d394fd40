package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/kanda-lab/chatreport/internal/chatlog"
)

func msg(sender, senderName string, kind chatlog.Kind, content string, ts time.Time) chatlog.ChatMessage {
	return chatlog.ChatMessage{
		SenderID:   sender,
		SenderName: senderName,
		Kind:       kind,
		Content:    content,
		Timestamp:  ts,
	}
}

func TestNormalize(t *testing.T) {
	base := time.Date(2026, 8, 20, 9, 15, 0, 0, time.UTC)

	messages := []chatlog.ChatMessage{
		msg("user-a", "Alice", chatlog.KindText, "morning everyone", base),
		msg("user-a", "Alice", chatlog.KindText, "  meeting at ten  ", base.Add(time.Minute)),
		msg("user-b", "Bob", chatlog.KindText, "got it", base.Add(2*time.Minute)),
	}

	transcript, stats := Normalize(messages)

	wantTranscript := "[09:15:00] Alice: morning everyone\n" +
		"[09:16:00] Alice: meeting at ten\n" +
		"[09:17:00] Bob: got it"
	if transcript != wantTranscript {
		t.Errorf("transcript = %q, want %q", transcript, wantTranscript)
	}
	if stats != "statistics: 3 total messages, 3 valid, 2 participants" {
		t.Errorf("stats = %q", stats)
	}
}

func TestNormalize_DropsInvalidMessages(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	messages := []chatlog.ChatMessage{
		msg("a", "A", chatlog.KindImage, "photo.jpg", base),
		msg("b", "B", chatlog.KindText, "first", base.Add(time.Second)),
		msg("c", "C", chatlog.KindText, "   ", base.Add(2*time.Second)),
		msg("d", "D", chatlog.KindText, "no timestamp", time.Time{}),
		msg("e", "E", chatlog.KindVoice, "", base.Add(3*time.Second)),
		msg("b", "B", chatlog.KindText, "second", base.Add(4*time.Second)),
	}

	transcript, stats := Normalize(messages)

	lines := strings.Split(transcript, "\n")
	if len(lines) != 2 {
		t.Fatalf("transcript has %d lines, want 2: %q", len(lines), transcript)
	}
	// Original relative order is preserved.
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Errorf("transcript order wrong: %q", transcript)
	}
	if stats != "statistics: 6 total messages, 2 valid, 1 participants" {
		t.Errorf("stats = %q", stats)
	}
}

func TestNormalize_UnknownSenderFallback(t *testing.T) {
	base := time.Date(2026, 8, 20, 8, 0, 5, 0, time.UTC)

	transcript, _ := Normalize([]chatlog.ChatMessage{
		msg("a", "", chatlog.KindText, "hello", base),
		msg("b", "   ", chatlog.KindText, "hi", base.Add(time.Second)),
	})

	want := "[08:00:05] unknown user: hello\n[08:00:06] unknown user: hi"
	if transcript != want {
		t.Errorf("transcript = %q, want %q", transcript, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	transcript, stats := Normalize(nil)
	if transcript != "" {
		t.Errorf("transcript = %q, want empty", transcript)
	}
	if stats != "no valid chat records" {
		t.Errorf("stats = %q, want %q", stats, "no valid chat records")
	}
}

func TestNormalize_AllInvalid(t *testing.T) {
	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	transcript, stats := Normalize([]chatlog.ChatMessage{
		msg("a", "A", chatlog.KindImage, "x", base),
		msg("b", "B", chatlog.KindText, "", base),
	})
	if transcript != "" {
		t.Errorf("transcript = %q, want empty", transcript)
	}
	if stats != "no valid chat records" {
		t.Errorf("stats = %q, want %q", stats, "no valid chat records")
	}
}
