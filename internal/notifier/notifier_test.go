package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/leonmuri/Progol-aleatorio2/internal/config"
	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
)

func testSheet(number int) export.Sheet {
	matches := make([]draw.MatchRecord, draw.MaxMatches)
	picks := make(map[int]draw.Pick)
	for i := range matches {
		matches[i] = draw.MatchRecord{Position: i + 1, HomeTeam: "Local", AwayTeam: "Visita"}
		picks[i+1] = draw.AllPicks[i%3]
	}
	return export.Sheet{
		Number: number,
		Draw: draw.DrawInfo{
			PrizeAmount: draw.String("$12,500,000.00"),
			DrawDate:    time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC),
			RoundNumber: draw.String("2301"),
		},
		Stage:   draw.StageStructured,
		Matches: matches,
		Picks:   picks,
	}
}

func TestFormatPost(t *testing.T) {
	tests := []struct {
		name     string
		sheet    func() export.Sheet
		contains []string
		excludes []string
	}{
		{
			name:  "complete sheet",
			sheet: func() export.Sheet { return testSheet(1) },
			contains: []string{
				"Quiniela Progol #1",
				"Concurso 2301",
				"Sorteo 19/10/2025",
				"Bolsa: $12,500,000.00",
				"1:1 2:X 3:2",
				"L 5 · E 5 · V 4",
				"#Progol",
			},
			excludes: []string{"aproximados"},
		},
		{
			name: "synthetic sheet without prize or round",
			sheet: func() export.Sheet {
				s := testSheet(2)
				s.Stage = draw.StageSynthetic
				s.Draw.PrizeAmount = nil
				s.Draw.RoundNumber = nil
				return s
			},
			contains: []string{"Sorteo 19/10/2025", "(partidos aproximados)"},
			excludes: []string{"Bolsa", "Concurso"},
		},
		{
			name: "missing pick",
			sheet: func() export.Sheet {
				s := testSheet(3)
				delete(s.Picks, 14)
				return s
			},
			contains: []string{"14:-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatPost(tt.sheet())

			if n := utf8.RuneCountInString(got); n > MaxPostLength {
				t.Errorf("formatPost() length = %d, want <= %d", n, MaxPostLength)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatPost() missing %q in post:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("formatPost() contains %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestFormatPost_Truncates(t *testing.T) {
	sheet := testSheet(1)
	sheet.Draw.PrizeAmount = draw.String(strings.Repeat("$1,000,000 ", 40))

	got := formatPost(sheet)

	if n := utf8.RuneCountInString(got); n != MaxPostLength {
		t.Errorf("length = %d, want %d", n, MaxPostLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated post does not end with ellipsis: %q", got)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a multi-byte character")
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	if err := n.Notify([]export.Sheet{testSheet(1), testSheet(2)}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"--- Post 1/2 ---", "--- Post 2/2 ---", "Quiniela Progol #2", "characters)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// redirectTransport sends every request to a test server.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestTwitter(t *testing.T, handler http.HandlerFunc) *TwitterNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, _ := url.Parse(srv.URL)
	n := newTwitterNotifier(&http.Client{Transport: redirectTransport{target: target}})
	n.interval = 0
	return n
}

func TestTwitterNotifier_Notify(t *testing.T) {
	var posts atomic.Int32
	var lastStatus atomic.Value

	n := newTestTwitter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/statuses/update.json") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		lastStatus.Store(r.PostForm.Get("status"))
		id := posts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": %d, "id_str": "%d"}`, id, id)
	})

	if err := n.Notify([]export.Sheet{testSheet(1), testSheet(2)}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got := posts.Load(); got != 2 {
		t.Errorf("posted %d statuses, want 2", got)
	}
	if status, _ := lastStatus.Load().(string); !strings.Contains(status, "Quiniela Progol #2") {
		t.Errorf("last status = %q", status)
	}
}

func TestTwitterNotifier_APIError(t *testing.T) {
	n := newTestTwitter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"code":187,"message":"Status is a duplicate."}]}`))
	})

	err := n.Notify([]export.Sheet{testSheet(1), testSheet(2)})
	if err == nil {
		t.Fatal("Notify() error = nil, want API error")
	}
	if !strings.Contains(err.Error(), "posting ticket 1") {
		t.Errorf("error = %v, want it to name the ticket", err)
	}
}

func TestNewTwitterNotifier_MissingCredentials(t *testing.T) {
	_, err := NewTwitterNotifier(config.TwitterConfig{APIKey: "key"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}

	n, err := NewTwitterNotifier(config.TwitterConfig{
		APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts",
	})
	if err != nil || n == nil {
		t.Errorf("NewTwitterNotifier() = %v, %v", n, err)
	}
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify([]export.Sheet) error {
	r.calls++
	return r.err
}

func TestMulti(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first failed")}
	second := &recordingNotifier{}
	third := &recordingNotifier{err: errors.New("third failed")}

	err := Multi{first, second, third}.Notify([]export.Sheet{testSheet(1)})

	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want every notifier called once", first.calls, second.calls, third.calls)
	}
	if err == nil || !strings.Contains(err.Error(), "first failed") || !strings.Contains(err.Error(), "third failed") {
		t.Errorf("error = %v, want both failures", err)
	}

	if err := (Multi{second}).Notify(nil); err != nil {
		t.Errorf("Notify() with no failures error = %v", err)
	}
}

func newTestTelegram(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(config.TelegramConfig{BotToken: "token", ChatID: "-100200"})
	if err != nil {
		t.Fatalf("NewTelegramNotifier() error = %v", err)
	}
	n.baseURL = srv.URL + "/bot"
	return n
}

func TestTelegramNotifier_Notify(t *testing.T) {
	var sent atomic.Int32

	n := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			ChatID string `json:"chat_id"`
			Text   string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if payload.ChatID != "-100200" || !strings.Contains(payload.Text, "Quiniela Progol") {
			t.Errorf("payload = %+v", payload)
		}
		sent.Add(1)
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	if err := n.Notify([]export.Sheet{testSheet(1), testSheet(2)}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got := sent.Load(); got != 2 {
		t.Errorf("sent %d messages, want 2", got)
	}
}

func TestTelegramNotifier_APIError(t *testing.T) {
	n := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := n.Notify([]export.Sheet{testSheet(1)})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Notify() error = %v, want the API description", err)
	}
}

func TestNewTelegramNotifier_MissingConfig(t *testing.T) {
	if _, err := NewTelegramNotifier(config.TelegramConfig{BotToken: "token"}); !errors.Is(err, ErrMissingTelegramConfig) {
		t.Errorf("error = %v, want ErrMissingTelegramConfig", err)
	}
}

func TestTelegramNotifier_TransportErrorHidesToken(t *testing.T) {
	n, err := NewTelegramNotifier(config.TelegramConfig{BotToken: "secret-token", ChatID: "-100200"})
	if err != nil {
		t.Fatalf("NewTelegramNotifier() error = %v", err)
	}
	n.baseURL = "http://127.0.0.1:1/bot"
	n.httpClient = &http.Client{Timeout: time.Second}

	err = n.Notify([]export.Sheet{testSheet(1)})
	if err == nil {
		t.Fatal("Notify() error = nil, want a transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("error leaks the bot token: %v", err)
	}
}
