package discord

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(s *discordgo.Session) *Client {
	return &Client{session: s, isBot: make(map[string]bool)}
}

func TestSendChannelMessage_ReturnsMessageID(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if !strings.HasSuffix(req.URL.Path, "/channels/chan-1/messages") {
			t.Errorf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":"msg-1","channel_id":"chan-1","content":"hello"}`), nil
	})

	id, err := newTestClient(s).SendChannelMessage("chan-1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("expected msg-1, got %q", id)
	}
}

func TestEditChannelMessage(t *testing.T) {
	var gotBody string
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPatch {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if !strings.HasSuffix(req.URL.Path, "/channels/chan-1/messages/msg-1") {
			t.Errorf("unexpected request path: %s", req.URL.Path)
		}
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		return jsonResponse(http.StatusOK, `{"id":"msg-1","channel_id":"chan-1","content":"updated"}`), nil
	})

	if err := newTestClient(s).EditChannelMessage("chan-1", "msg-1", "updated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotBody, "updated") {
		t.Fatalf("edit body missing content: %s", gotBody)
	}
}

func TestIsBot_UsesStateCacheFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{ID: "guild-1"}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}
	if err := s.State.MemberAdd(&discordgo.Member{
		GuildID: "guild-1",
		User:    &discordgo.User{ID: "music-bot", Bot: true},
	}); err != nil {
		t.Fatalf("failed to add member to state: %v", err)
	}

	if !newTestClient(s).IsBot("guild-1", "music-bot") {
		t.Fatal("expected state member to be reported as bot")
	}
}

func TestIsBot_FallsBackToRESTAndCaches(t *testing.T) {
	calls := 0
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if !strings.HasSuffix(req.URL.Path, "/users/user-1") {
			t.Errorf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":"user-1","username":"alice","bot":false}`), nil
	})

	c := newTestClient(s)
	if c.IsBot("guild-1", "user-1") {
		t.Fatal("expected human user")
	}
	if c.IsBot("guild-1", "user-1") {
		t.Fatal("expected human user")
	}
	if calls != 1 {
		t.Fatalf("expected one REST call, got %d", calls)
	}
}
