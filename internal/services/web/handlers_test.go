package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/leadfunnel/personaquiz/internal/lead"
	"github.com/leadfunnel/personaquiz/internal/partner"
	"github.com/leadfunnel/personaquiz/internal/quiz"
	"github.com/leadfunnel/personaquiz/internal/storage"
	"github.com/leadfunnel/personaquiz/internal/storage/memory"
)

type sinkCall struct {
	token, to, message string
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (f *fakeSink) Push(ctx context.Context, token, to, message string) error {
	f.mu.Lock()
	f.calls = append(f.calls, sinkCall{token, to, message})
	f.mu.Unlock()
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var testRosterColumns = []string{
	"ref", "name", "title", "img_url",
	"line_id", "line_search_id", "line_token", "password",
}

type testEnv struct {
	ts     *httptest.Server
	client *http.Client
	store  *memory.Store
	sink   *fakeSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	store.Seed(partner.TableMaster, storage.Table{
		Columns: testRosterColumns,
		Rows: [][]string{
			{"master", "總顧問", "創辦人", "", "master-id", "@master", "master-token", "boss-team-pw"},
		},
	})
	store.Seed(partner.TableTeam, storage.Table{
		Columns: testRosterColumns,
		Rows: [][]string{
			{"amy", "Amy", "顧問", "", "amy-id", "@amy", "amy-token", "amy-pw"},
		},
	})

	roster, err := partner.LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}

	sink := &fakeSink{}
	recorder := lead.NewRecorder(store, sink, lead.MasterContact{Token: "channel-token", To: "owner-id"}, nil)

	srv, err := NewServer(Config{
		Addr:             "127.0.0.1:0",
		Roster:           roster,
		Store:            store,
		Recorder:         recorder,
		AdminPassword:    "boss-pw",
		AdminSecret:      []byte("test-grant-secret"),
		MasterLineHandle: "@fallback",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	return &testEnv{
		ts:     ts,
		client: &http.Client{Jar: jar},
		store:  store,
		sink:   sink,
	}
}

func (e *testEnv) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// post submits a form and returns the body of the followed redirect, which
// is where one-time notices surface.
func (e *testEnv) post(t *testing.T, path string, form url.Values) string {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s final status = %d, want %d", path, resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestFunnelHappyPath(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	page := env.get(t, "/?ref=amy&cl=cl7&mode=B")
	if !strings.Contains(page, "你的名字") {
		t.Fatalf("intro page missing name field:\n%s", page)
	}
	if !strings.Contains(page, "Amy") {
		t.Errorf("intro page does not show resolved operator")
	}

	env.post(t, "/start", url.Values{"name": {"小美"}, "segment": {quiz.Segments[0]}})

	page = env.get(t, "/")
	if !strings.Contains(page, "第 1 / 10 題") {
		t.Fatalf("expected first question, got:\n%s", page)
	}

	for i := 0; i < quiz.Total; i++ {
		env.post(t, "/answer", url.Values{"direction": {"next"}, "pick": {"A"}})
	}

	page = env.get(t, "/")
	if !strings.Contains(page, "的測驗結果") {
		t.Fatalf("expected result page, got:\n%s", page)
	}
	if !strings.Contains(page, "領航型") {
		t.Errorf("result page missing unanimous-A persona")
	}
	if env.sink.count() != 0 {
		t.Fatalf("pushes before interest = %d, want 0", env.sink.count())
	}

	env.post(t, "/interest", url.Values{"interest": {"🔥 想馬上了解"}})
	page = env.get(t, "/")
	if !strings.Contains(page, "你的意願") {
		t.Errorf("result page does not show the frozen interest")
	}

	table, err := env.store.ReadTable(context.Background(), lead.TableLeads)
	if err != nil {
		t.Fatalf("ReadTable(leads) error = %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("len(lead rows) = %d, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	cell := func(name string) string { return row[table.ColumnIndex(name)] }
	if cell("ref") != "amy" {
		t.Errorf("ref cell = %q, want %q", cell("ref"), "amy")
	}
	if cell("mode") != "B" || cell("funnel") != "cl7" {
		t.Errorf("mode/funnel = %q/%q, want B/cl7", cell("mode"), cell("funnel"))
	}
	if env.sink.count() != 2 {
		t.Fatalf("pushes after interest = %d, want 2", env.sink.count())
	}

	// Re-rendering the result must not append another row.
	_ = env.get(t, "/")
	table, _ = env.store.ReadTable(context.Background(), lead.TableLeads)
	if len(table.Rows) != 1 {
		t.Fatalf("len(lead rows) after re-render = %d, want 1", len(table.Rows))
	}
}

func TestStartRequiresName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_ = env.get(t, "/")

	page := env.post(t, "/start", url.Values{"name": {"   "}})
	if !strings.Contains(page, "請先輸入你的名字") {
		t.Fatalf("expected name validation notice, got:\n%s", page)
	}
	if !strings.Contains(page, "你的名字") {
		t.Error("session left the intro screen despite the empty name")
	}
}

func TestInterestRequiredBeforeRecording(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_ = env.get(t, "/")
	env.post(t, "/start", url.Values{"name": {"測試"}})
	for i := 0; i < quiz.Total; i++ {
		env.post(t, "/answer", url.Values{"direction": {"next"}, "pick": {"B"}})
	}

	page := env.post(t, "/interest", url.Values{"interest": {"  "}})
	if !strings.Contains(page, "請先選擇你的意願") {
		t.Fatalf("expected interest validation notice, got:\n%s", page)
	}
	if _, err := env.store.ReadTable(context.Background(), lead.TableLeads); !storage.IsNotFound(err) {
		t.Fatalf("leads table exists without interest, err = %v", err)
	}
}

func TestPrevFromFirstQuestionReturnsToIntro(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_ = env.get(t, "/")
	env.post(t, "/start", url.Values{"name": {"測試"}})
	env.post(t, "/answer", url.Values{"direction": {"prev"}, "pick": {"C"}})

	page := env.get(t, "/")
	if !strings.Contains(page, "你的名字") {
		t.Fatalf("expected intro page after prev from question 1, got:\n%s", page)
	}
}

func TestRestartClearsFunnelState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_ = env.get(t, "/")
	env.post(t, "/start", url.Values{"name": {"測試"}})
	for i := 0; i < quiz.Total; i++ {
		env.post(t, "/answer", url.Values{"direction": {"next"}, "pick": {"D"}})
	}
	env.post(t, "/restart", nil)

	page := env.get(t, "/")
	if !strings.Contains(page, "你的名字") {
		t.Fatalf("expected intro page after restart, got:\n%s", page)
	}
}

func TestOperatorCardShownOnEveryScreen(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	page := env.get(t, "/?ref=amy")
	if !strings.Contains(page, "partner-card") || !strings.Contains(page, "Amy") {
		t.Fatalf("intro page missing operator card:\n%s", page)
	}

	env.post(t, "/start", url.Values{"name": {"測試"}, "segment": {quiz.Segments[0]}})
	page = env.get(t, "/")
	if !strings.Contains(page, "第 1 / 10 題") {
		t.Fatalf("expected first question, got:\n%s", page)
	}
	if !strings.Contains(page, "partner-card") || !strings.Contains(page, "Amy") {
		t.Errorf("quiz page missing operator card:\n%s", page)
	}

	for i := 0; i < quiz.Total; i++ {
		env.post(t, "/answer", url.Values{"direction": {"next"}, "pick": {"A"}})
	}
	page = env.get(t, "/")
	if !strings.Contains(page, "的測驗結果") {
		t.Fatalf("expected result page, got:\n%s", page)
	}
	if !strings.Contains(page, "partner-card") || !strings.Contains(page, "Amy") {
		t.Errorf("result page missing operator card:\n%s", page)
	}
}

func TestConcurrentAnswersStaySerialized(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_ = env.get(t, "/")
	env.post(t, "/start", url.Values{"name": {"測試"}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := env.client.PostForm(env.ts.URL+"/answer",
				url.Values{"direction": {"next"}, "pick": {"A"}})
			if err != nil {
				t.Errorf("POST /answer error = %v", err)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	// Each submission lands exactly once, so eight answers leave the
	// session on question nine.
	page := env.get(t, "/")
	if !strings.Contains(page, "第 9 / 10 題") {
		t.Fatalf("expected question 9 after eight concurrent answers, got:\n%s", page)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if got := env.get(t, "/healthz"); got != "ok" {
		t.Errorf("GET /healthz = %q, want %q", got, "ok")
	}
}

func TestStaticStylesheet(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body := env.get(t, "/static/styles.css")
	if !strings.Contains(body, ".hero-title") {
		t.Errorf("stylesheet missing expected selector")
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resp, err := env.client.Get(env.ts.URL + "/no-such-page")
	if err != nil {
		t.Fatalf("GET /no-such-page error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
