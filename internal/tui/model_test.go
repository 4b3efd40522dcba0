package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
	"career-chat/internal/config"
	"career-chat/internal/history"
	"career-chat/internal/session"
	"career-chat/internal/tui/render"
)

type fakeBackend struct {
	mu        sync.Mutex
	answer    string
	askErr    error
	asked     []api.AskRequest
	list      []api.University
	listErr   error
	deleted   []string
	deleteErr error
	uploaded  []string
	uploadErr error

	// holdUpload 非 nil 时上传一直等到 ctx 取消，随后关闭该通道。
	holdUpload chan struct{}
}

func (f *fakeBackend) Ask(_ context.Context, req api.AskRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, req)
	return f.answer, f.askErr
}

func (f *fakeBackend) ListUniversities(context.Context) ([]api.University, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list, f.listErr
}

func (f *fakeBackend) UploadUniversity(ctx context.Context, path string, progress api.Progress) (api.UploadResult, error) {
	f.mu.Lock()
	hold := f.holdUpload
	f.mu.Unlock()
	if hold != nil {
		<-ctx.Done()
		close(hold)
		return api.UploadResult{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, path)
	if f.uploadErr != nil {
		return api.UploadResult{}, f.uploadErr
	}
	progress(50, 100)
	progress(100, 100)
	uni := api.University{Name: "State U", DocumentCount: 1}
	f.list = append(f.list, uni)
	return api.UploadResult{Message: "Uploaded State U", University: uni}, nil
}

func (f *fakeBackend) DeleteUniversity(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	return "Deleted " + name, f.deleteErr
}

type testEnv struct {
	dir        string
	configPath string
	copied     string
	now        time.Time
}

func newTestModel(t *testing.T, backend *fakeBackend, mutate ...func(*Options)) (*Model, *testEnv) {
	t.Helper()
	env := &testEnv{dir: t.TempDir(), now: time.Unix(1700000000, 0)}
	env.configPath = filepath.Join(env.dir, "config.toml")
	cfg := config.Default()
	cfg.Theme = config.ThemeDark
	cfg.Reveal.ReducedMotion = true
	opts := Options{
		Backend:     backend,
		Config:      cfg,
		ConfigPath:  env.configPath,
		CatalogPath: filepath.Join(env.dir, "universities.json"),
		History:     &history.Store{Path: filepath.Join(env.dir, "history.jsonl"), Limit: 100},
		Sessions:    &session.Store{Dir: filepath.Join(env.dir, "sessions")},
		Clipboard: func(s string) error {
			env.copied = s
			return nil
		},
		DetectDark: func() bool { return true },
		Clock:      func() time.Time { return env.now },
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	m := New(opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m, env
}

// viewOf 先刷新视口再渲染，直接调用 handleKey 时不会经过 finish。
func viewOf(m *Model) string {
	m.finish()
	return m.View()
}

func typeAndSubmit(t *testing.T, m *Model, text string) tea.Cmd {
	t.Helper()
	m.setInput(text)
	return m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSubmitAsksAndRevealsAnswer(t *testing.T) {
	backend := &fakeBackend{answer: "**Start** early.\n\n- resume\n- network"}
	m, env := newTestModel(t, backend)
	m.cfg.University = "State U"
	m.cfg.APIKey = "secret-key"

	cmd := typeAndSubmit(t, m, "  How do I find internships?  ")
	if cmd == nil {
		t.Fatalf("expected ask command")
	}
	if !m.busy || m.status.State() != StatusThinking {
		t.Fatalf("busy = %v, state = %s, want busy thinking", m.busy, m.status.State())
	}
	if m.textarea.Value() != "" {
		t.Fatalf("input not cleared: %q", m.textarea.Value())
	}
	if !strings.Contains(viewOf(m), "Thinking...") {
		t.Fatalf("expected Thinking indicator in view")
	}

	m.Update(cmd())

	if len(backend.asked) != 1 {
		t.Fatalf("asked %d times, want 1", len(backend.asked))
	}
	req := backend.asked[0]
	if req.Query != "How do I find internships?" || req.UniversityName != "State U" || req.APIKey != "secret-key" || req.CustomPrompt != config.DefaultPrompt {
		t.Fatalf("unexpected request %+v", req)
	}
	if m.busy || m.status.State() != StatusIdle {
		t.Fatalf("busy = %v, state = %s after reveal", m.busy, m.status.State())
	}
	view := viewOf(m)
	for _, want := range []string{"How do I find internships?", "Start early.", "• resume"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	msgs := m.transcript.Messages()
	if len(msgs) != 2 || msgs[1].Content != backend.answer {
		t.Fatalf("messages = %+v", msgs)
	}

	texts, err := (&history.Store{Path: filepath.Join(env.dir, "history.jsonl")}).LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}
	if len(texts) != 1 || texts[0] != "How do I find internships?" {
		t.Fatalf("history = %q", texts)
	}
}

func TestAskFailureRevealsFallback(t *testing.T) {
	cases := []struct {
		name    string
		backend *fakeBackend
	}{
		{"server error", &fakeBackend{askErr: &api.Error{Status: 500, Message: "boom"}}},
		{"missing key", &fakeBackend{askErr: api.ErrMissingKey}},
		{"empty answer", &fakeBackend{answer: "   "}},
		{"comment only answer", &fakeBackend{answer: "<!-- nothing -->"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestModel(t, tc.backend)
			cmd := typeAndSubmit(t, m, "hello")
			m.Update(cmd())
			answer, ok := m.transcript.LastAnswer()
			if !ok || answer != api.FallbackAnswer {
				t.Fatalf("LastAnswer() = %q, want fallback", answer)
			}
			if !strings.Contains(viewOf(m), api.FallbackAnswer) {
				t.Fatalf("fallback not shown")
			}
			if m.busy {
				t.Fatalf("input should be re-enabled")
			}
		})
	}
}

func TestEmptyAndBusyInputIgnored(t *testing.T) {
	backend := &fakeBackend{answer: "ok"}
	m, _ := newTestModel(t, backend)
	before := m.transcript.Len()
	if cmd := typeAndSubmit(t, m, "   \n  "); cmd != nil {
		t.Fatalf("blank input should not submit")
	}
	if m.transcript.Len() != before {
		t.Fatalf("blank input changed the transcript")
	}

	cmd := typeAndSubmit(t, m, "first")
	if cmd == nil {
		t.Fatalf("expected ask command")
	}
	if again := m.submitInput("second"); again != nil {
		t.Fatalf("submit while busy should be ignored")
	}
	m.Update(cmd())
	if len(backend.asked) != 1 {
		t.Fatalf("asked %d times, want 1", len(backend.asked))
	}
}

func TestClearDropsStaleAnswer(t *testing.T) {
	backend := &fakeBackend{answer: "late answer"}
	m, env := newTestModel(t, backend)
	cmd := typeAndSubmit(t, m, "question")
	msg := cmd()

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	m.Update(msg)

	if _, ok := m.transcript.LastAnswer(); ok {
		t.Fatalf("stale answer should be dropped after clear")
	}
	if m.busy {
		t.Fatalf("clear should re-enable input")
	}
	// 清空前的对话已保存
	entries, err := os.ReadDir(filepath.Join(env.dir, "sessions"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one saved session, got %v (err %v)", entries, err)
	}
}

func TestRevealAdvancesOnTicks(t *testing.T) {
	backend := &fakeBackend{answer: "alpha beta gamma"}
	m, env := newTestModel(t, backend, func(o *Options) {
		o.Config.Reveal = config.RevealConfig{BaseDelayMS: 10}
	})
	cmd := typeAndSubmit(t, m, "q")
	m.Update(cmd())

	if m.status.State() != StatusRevealing {
		t.Fatalf("state = %s, want revealing", m.status.State())
	}
	view := viewOf(m)
	if !strings.Contains(view, "alpha") || strings.Contains(view, "gamma") {
		t.Fatalf("expected partial reveal, got:\n%s", view)
	}

	// 过期的 tick 不推进
	m.Update(revealTickMsg{gen: m.gen - 1})
	if strings.Contains(viewOf(m), "beta") {
		t.Fatalf("stale tick advanced the reveal")
	}

	for i := 0; i < 10 && m.busy; i++ {
		env.now = env.now.Add(20 * time.Millisecond)
		m.Update(revealTickMsg{gen: m.gen})
	}
	if m.busy {
		t.Fatalf("reveal did not finish")
	}
	if !strings.Contains(viewOf(m), "alpha beta gamma") {
		t.Fatalf("full answer not shown:\n%s", viewOf(m))
	}
}

func TestEscSkipsReveal(t *testing.T) {
	backend := &fakeBackend{answer: "one two three four five"}
	m, _ := newTestModel(t, backend, func(o *Options) {
		o.Config.Reveal = config.RevealConfig{BaseDelayMS: 50, JitterMS: 10, ShowAfterMS: 10}
	})
	cmd := typeAndSubmit(t, m, "q")
	m.Update(cmd())
	if !m.busy {
		t.Fatalf("expected reveal in progress")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.busy || m.task != nil {
		t.Fatalf("esc should finish the reveal")
	}
	if !strings.Contains(viewOf(m), "one two three four five") {
		t.Fatalf("skipped reveal should show everything:\n%s", viewOf(m))
	}
}

func TestThemeAndKeyCommands(t *testing.T) {
	m, env := newTestModel(t, &fakeBackend{})

	m.submitInput("/theme light")
	if m.cfg.Theme != config.ThemeLight || m.th.Dark {
		t.Fatalf("theme = %s, dark = %v", m.cfg.Theme, m.th.Dark)
	}
	m.submitInput("/theme")
	if m.cfg.Theme != config.ThemeDark {
		t.Fatalf("toggle theme = %s, want dark", m.cfg.Theme)
	}
	m.submitInput("/theme purple")
	if m.cfg.Theme != config.ThemeDark {
		t.Fatalf("invalid theme changed the setting")
	}

	if !strings.Contains(m.headerView(), "API key missing") {
		t.Fatalf("header = %q, want missing key", m.headerView())
	}
	m.submitInput("/key  abcdefgh1234 ")
	if m.cfg.APIKey != "abcdefgh1234" {
		t.Fatalf("APIKey = %q", m.cfg.APIKey)
	}
	header := m.headerView()
	if !strings.Contains(header, "API key saved") || strings.Contains(header, "abcdefgh1234") {
		t.Fatalf("header should show masked key, got %q", header)
	}
	m.submitInput("/key show")
	if !strings.Contains(m.headerView(), "abcdefgh1234") {
		t.Fatalf("/key show should reveal the key")
	}

	saved, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Theme != config.ThemeDark || saved.APIKey != "abcdefgh1234" {
		t.Fatalf("saved config = %+v", saved)
	}

	m.submitInput("/key clear")
	if m.cfg.HasAPIKey() {
		t.Fatalf("/key clear should remove the key")
	}
}

func TestPromptEditor(t *testing.T) {
	m, env := newTestModel(t, &fakeBackend{})
	m.submitInput("/prompt")
	if m.editor == nil {
		t.Fatalf("expected prompt editor")
	}
	if m.editor.area.Value() != config.DefaultPrompt {
		t.Fatalf("editor should start with the current prompt")
	}

	m.editor.area.SetValue("   ")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.editor == nil || !errors.Is(m.editor.err, config.ErrEmptyPrompt) {
		t.Fatalf("empty prompt should keep the editor open with an error")
	}

	m.editor.area.SetValue("  Be brief.  ")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.editor != nil || m.cfg.Prompt != "Be brief." {
		t.Fatalf("prompt = %q, editor open = %v", m.cfg.Prompt, m.editor != nil)
	}
	saved, err := config.Load(env.configPath)
	if err != nil || saved.Prompt != "Be brief." {
		t.Fatalf("saved prompt = %q (err %v)", saved.Prompt, err)
	}

	m.submitInput("/prompt")
	m.editor.area.SetValue("discarded")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.editor != nil || m.cfg.Prompt != "Be brief." {
		t.Fatalf("esc should cancel without saving")
	}

	m.submitInput("/prompt reset")
	if m.cfg.Prompt != config.DefaultPrompt {
		t.Fatalf("/prompt reset did not restore the default")
	}
}

func TestUniversityPicker(t *testing.T) {
	m, env := newTestModel(t, &fakeBackend{}, func(o *Options) {
		o.Catalog = catalog.Cache{Universities: []api.University{
			{Name: "Stanford University", DocumentCount: 3},
			{Name: "State U", DocumentCount: 1},
			{Name: "MIT", DocumentCount: 2},
		}}
	})
	m.submitInput("/uni")
	if m.picker == nil || len(m.picker.matches) != 3 {
		t.Fatalf("picker should list every university")
	}
	for _, r := range "mit" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(m.picker.matches) != 1 || m.picker.matches[0].University.Name != "MIT" {
		t.Fatalf("matches = %+v", m.picker.matches)
	}
	if !strings.Contains(viewOf(m), "Select a university") {
		t.Fatalf("picker not rendered")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.picker != nil || m.cfg.University != "MIT" {
		t.Fatalf("University = %q, picker open = %v", m.cfg.University, m.picker != nil)
	}
	saved, _ := config.Load(env.configPath)
	if saved.University != "MIT" {
		t.Fatalf("selection not persisted: %q", saved.University)
	}

	m.submitInput("/uni zzz")
	if len(m.picker.matches) != 0 {
		t.Fatalf("expected no matches for zzz")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.picker != nil || m.cfg.University != "MIT" {
		t.Fatalf("esc should close without changing the selection")
	}
}

func writeUploadCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "state.csv")
	row := `1,10,State U,5,Careers,desc,http://x,2024-01-01,2024-01-02,4,"a,b",Resume help content`
	if err := os.WriteFile(path, []byte(row+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestUploadReportsProgressAndSelects(t *testing.T) {
	backend := &fakeBackend{}
	m, env := newTestModel(t, backend)
	path := writeUploadCSV(t, env.dir)

	cmd := m.runCommand("upload", path)
	if cmd == nil || m.upload == nil {
		t.Fatalf("expected upload to start")
	}
	if m.status.State() != StatusUploading {
		t.Fatalf("state = %s, want uploading", m.status.State())
	}
	ch := m.upload.ch
	sawProgress := false
	for msg := cmd(); msg != nil; msg = waitUpload(ch)() {
		if p, ok := msg.(uploadProgressMsg); ok && p.sent > 0 {
			sawProgress = true
			if !strings.Contains(viewOf(m), "state.csv") {
				t.Fatalf("progress line missing")
			}
		}
		m.Update(msg)
	}
	if !sawProgress {
		t.Fatalf("expected at least one progress message")
	}
	if m.upload != nil || m.status.State() != StatusIdle {
		t.Fatalf("upload should be finished")
	}
	if m.cfg.University != "State U" || !m.cache.Contains("State U") {
		t.Fatalf("University = %q, cache = %+v", m.cfg.University, m.cache)
	}
	cached, err := catalog.Load(filepath.Join(env.dir, "universities.json"))
	if err != nil || !cached.Contains("State U") {
		t.Fatalf("cache not saved: %+v (err %v)", cached, err)
	}
}

func TestUploadRejectsInvalidFile(t *testing.T) {
	backend := &fakeBackend{}
	m, env := newTestModel(t, backend)
	if cmd := m.runCommand("upload", filepath.Join(env.dir, "missing.csv")); cmd != nil {
		t.Fatalf("invalid upload should not start")
	}
	if len(backend.uploaded) != 0 || m.upload != nil {
		t.Fatalf("backend should not be called")
	}
	if !strings.Contains(viewOf(m), "Upload failed") {
		t.Fatalf("expected error in transcript")
	}
}

func TestUploadServerErrorShowsMessage(t *testing.T) {
	backend := &fakeBackend{uploadErr: &api.Error{Status: 400, Message: "CSV must have 12 columns"}}
	m, env := newTestModel(t, backend)
	cmd := m.runCommand("upload", writeUploadCSV(t, env.dir))
	ch := m.upload.ch
	for msg := cmd(); msg != nil; msg = waitUpload(ch)() {
		m.Update(msg)
	}
	if !strings.Contains(viewOf(m), "Upload failed: CSV must have 12 columns") {
		t.Fatalf("server message not shown:\n%s", viewOf(m))
	}
	if line := m.status.View("", 80, m.th); m.status.State() != StatusError || !strings.Contains(line, "Upload failed") {
		t.Fatalf("status = %s %q, want upload error", m.status.State(), line)
	}
	if m.cfg.University != "" {
		t.Fatalf("failed upload should not change the selection")
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend, func(o *Options) {
		o.Catalog = catalog.Cache{Universities: []api.University{{Name: "State U"}, {Name: "MIT"}}}
		o.Config.University = "State U"
	})
	cmd := m.submitInput("/delete State U")
	if cmd == nil {
		t.Fatalf("expected delete command")
	}
	m.Update(cmd())
	if len(backend.deleted) != 1 || backend.deleted[0] != "State U" {
		t.Fatalf("deleted = %q", backend.deleted)
	}
	if m.cache.Contains("State U") || m.cfg.University != "" {
		t.Fatalf("cache = %+v, University = %q", m.cache, m.cfg.University)
	}

	backend.deleteErr = &api.Error{Status: 404, Message: "University not found"}
	m.Update(m.submitInput("/delete Nowhere")())
	if !strings.Contains(viewOf(m), "Delete failed: University not found") {
		t.Fatalf("delete error not shown")
	}
	if m.status.State() != StatusError {
		t.Fatalf("state = %s, want error after failed delete", m.status.State())
	}

	backend.deleteErr = nil
	m.Update(m.submitInput("/delete MIT")())
	if m.status.State() != StatusIdle {
		t.Fatalf("state = %s, want idle after successful delete", m.status.State())
	}
}

func TestRefreshUpdatesCatalog(t *testing.T) {
	backend := &fakeBackend{list: []api.University{{Name: "MIT", DocumentCount: 4}}}
	m, _ := newTestModel(t, backend)
	m.Update(m.submitInput("/refresh")())
	if !m.cache.Contains("MIT") || !strings.Contains(viewOf(m), "Loaded 1 universities.") {
		t.Fatalf("refresh did not update the catalog")
	}

	backend.listErr = errors.New("connection refused")
	m.Update(m.submitInput("/refresh")())
	if !m.cache.Contains("MIT") {
		t.Fatalf("failed refresh should keep the cached list")
	}
}

func TestCopyLastAnswer(t *testing.T) {
	backend := &fakeBackend{answer: "Visit the **career center**."}
	m, env := newTestModel(t, backend)
	m.submitInput("/copy")
	if env.copied != "" {
		t.Fatalf("nothing should be copied before an answer")
	}
	m.Update(typeAndSubmit(t, m, "where?")())
	m.submitInput("/copy")
	if env.copied != backend.answer {
		t.Fatalf("copied = %q, want raw answer", env.copied)
	}
	m.submitInput("/copy text")
	if env.copied != "Visit the career center." {
		t.Fatalf("copied = %q, want plain text", env.copied)
	}
	env.copied = ""
	m.submitInput("/copy html")
	if env.copied != "" || !strings.Contains(viewOf(m), "Usage: /copy [text]") {
		t.Fatalf("unknown /copy format should be rejected")
	}
}

func TestUploadBlocksQuestionsAndCancelsOnClear(t *testing.T) {
	hold := make(chan struct{})
	backend := &fakeBackend{holdUpload: hold}
	m, env := newTestModel(t, backend)

	cmd := m.runCommand("upload", writeUploadCSV(t, env.dir))
	if cmd == nil || m.upload == nil {
		t.Fatalf("expected upload to start")
	}
	staleID, ch := m.upload.id, m.upload.ch

	if typeAndSubmit(t, m, "Where is the career fair?") != nil {
		t.Fatalf("question should wait for the upload")
	}
	if len(backend.asked) != 0 || m.busy || m.status.State() != StatusUploading {
		t.Fatalf("asked = %d, busy = %v, state = %s", len(backend.asked), m.busy, m.status.State())
	}
	if m.textarea.Value() != "Where is the career fair?" {
		t.Fatalf("input should be kept, got %q", m.textarea.Value())
	}
	if !strings.Contains(viewOf(m), "Wait for the upload to finish before asking.") {
		t.Fatalf("expected a notice about the running upload")
	}

	m.submitInput("/clear")
	select {
	case <-hold:
	case <-time.After(2 * time.Second):
		t.Fatalf("upload was not cancelled")
	}
	if m.upload != nil || m.status.State() != StatusIdle {
		t.Fatalf("upload = %v, state = %s after clear", m.upload, m.status.State())
	}

	// 被取消的上传之后到达的消息不能再改动界面
	for msg := range ch {
		m.Update(msg)
	}
	m.Update(uploadDoneMsg{id: staleID, err: context.Canceled})
	m.Update(uploadProgressMsg{id: staleID, sent: 1, total: 2})
	if strings.Contains(viewOf(m), "Upload failed") || m.status.State() != StatusIdle {
		t.Fatalf("stale upload message changed the view:\n%s", viewOf(m))
	}
}

func TestUploadRefusedWhileAnswering(t *testing.T) {
	backend := &fakeBackend{answer: "ok"}
	m, env := newTestModel(t, backend)
	typeAndSubmit(t, m, "hello")
	if !m.busy {
		t.Fatalf("expected busy while waiting for the answer")
	}
	if cmd := m.startUpload(writeUploadCSV(t, env.dir)); cmd != nil || m.upload != nil {
		t.Fatalf("upload should not start while an answer is pending")
	}
	if m.status.State() != StatusThinking {
		t.Fatalf("state = %s, want thinking", m.status.State())
	}
}

func TestSlashCommandWithoutArgsShowsUsage(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	if cmd := m.submitInput("/upload"); cmd != nil {
		t.Fatalf("upload without a path should not run")
	}
	if m.textarea.Value() != "/upload " {
		t.Fatalf("input = %q, want completed command", m.textarea.Value())
	}
	if !strings.Contains(viewOf(m), "usage: /upload <file.csv>") {
		t.Fatalf("usage hint missing")
	}
}

func TestHistoryRecall(t *testing.T) {
	backend := &fakeBackend{answer: "ok"}
	m, _ := newTestModel(t, backend)
	m.Update(typeAndSubmit(t, m, "first question")())
	m.Update(typeAndSubmit(t, m, "second question")())

	m.setInput("draft")
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.textarea.Value(); got != "second question" {
		t.Fatalf("up = %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.textarea.Value(); got != "first question" {
		t.Fatalf("up twice = %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.textarea.Value(); got != "draft" {
		t.Fatalf("down past newest = %q, want draft", got)
	}
}

func TestResumeShowsSavedConversation(t *testing.T) {
	rec := session.Record{
		ID:         "abc",
		University: "State U",
		Messages: []session.Message{
			session.NewMessage(session.RoleUser, "Is there a career fair?", "State U"),
			session.NewMessage(session.RoleAssistant, "Yes, in **March**.", "State U"),
		},
	}
	m, _ := newTestModel(t, &fakeBackend{}, func(o *Options) { o.Resume = &rec })
	if m.sessionID != "abc" {
		t.Fatalf("sessionID = %q", m.sessionID)
	}
	if !strings.Contains(viewOf(m), "Yes, in March.") {
		t.Fatalf("saved answer not shown fully:\n%s", viewOf(m))
	}
	id, err := m.saveSession()
	if err != nil || id != "abc" {
		t.Fatalf("saveSession() = %q, %v", id, err)
	}
}

func TestSlashErrorsAndHelp(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	m.submitInput("/bogus")
	if !strings.Contains(viewOf(m), "unknown command") {
		t.Fatalf("unknown command not reported")
	}
	m.submitInput("/upload")
	if got := m.textarea.Value(); got != "/upload " {
		t.Fatalf("command needing args should wait for input, got %q", got)
	}
	m.resetInput()
	m.submitInput("/help")
	plain := strings.Join(render.LinesToPlainStrings(m.transcript.Render(200, m.th)), "\n")
	if !strings.Contains(plain, "Ctrl+C quit") {
		t.Fatalf("help text missing key hints")
	}
	if cmd := m.submitInput("/quit"); cmd == nil {
		t.Fatalf("/quit should return tea.Quit")
	}
}
