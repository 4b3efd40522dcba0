package render

import (
	"slices"
	"testing"

	"career-chat/internal/session"
)

func TestTranscriptPersistsOnlyConversation(t *testing.T) {
	tr := NewTranscript()
	tr.AppendNotice("Selected State U")
	tr.AppendUser("How do I find internships?", "State U")
	doc := tr.AppendAssistant("**Start early.**", "State U")
	tr.AppendError("upload failed")

	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[0].Role != session.RoleUser || msgs[1].Role != session.RoleAssistant {
		t.Fatalf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if answer, ok := tr.LastAnswer(); !ok || answer != "**Start early.**" {
		t.Fatalf("LastAnswer() = %q, %v", answer, ok)
	}

	// 回答尚未展示时只有前缀
	got := plain(tr.Render(40, DarkTheme()))
	want := []string{"  Selected State U", "", "› How do I find internships?", "", "• ", "", "! upload failed"}
	if !slices.Equal(got, want) {
		t.Fatalf("Render = %q, want %q", got, want)
	}

	revealMarkdown(t, "**Start early.**", doc)
	got = plain(tr.Render(40, DarkTheme()))
	if got[4] != "• Start early." {
		t.Fatalf("assistant line = %q", got[4])
	}

	tr.Clear()
	if tr.Len() != 0 || len(tr.Messages()) != 0 {
		t.Fatalf("Clear left entries behind")
	}
	if _, ok := tr.LastAnswer(); ok {
		t.Fatalf("LastAnswer after Clear should be empty")
	}
}

func TestTranscriptWrapsUserText(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("alpha beta gamma", "")
	got := plain(tr.Render(12, LightTheme()))
	want := []string{"› alpha beta", "  gamma"}
	if !slices.Equal(got, want) {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestTranscriptRestoreKeepsMessages(t *testing.T) {
	saved := []session.Message{
		session.NewMessage(session.RoleUser, "Where is the career fair?", "State U"),
		session.NewMessage(session.RoleAssistant, "In the *gym*.", "State U"),
	}
	tr := NewTranscript()
	if doc := tr.Restore(saved[0]); doc != nil {
		t.Fatalf("user message should not return a document")
	}
	doc := tr.Restore(saved[1])
	if doc == nil {
		t.Fatalf("assistant message should return a document")
	}
	revealMarkdown(t, saved[1].Content, doc)

	msgs := tr.Messages()
	if len(msgs) != 2 || msgs[0].ID != saved[0].ID || msgs[1].ID != saved[1].ID {
		t.Fatalf("Messages() = %+v, want restored ids", msgs)
	}
	got := plain(tr.Render(40, DarkTheme()))
	want := []string{"› Where is the career fair?", "", "• In the gym."}
	if !slices.Equal(got, want) {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
