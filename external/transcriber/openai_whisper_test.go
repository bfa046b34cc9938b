package transcriber

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/livecaption/internal/transcriber"
)

func TestOpenAITranscriber_Transcribe(t *testing.T) {
	var gotModel, gotLanguage, gotFilename string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			gotFilename = header.Filename
			gotAudio, _ = io.ReadAll(file)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  hello world  "})
	}))
	defer srv.Close()

	tr, err := NewOpenAITranscriber(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "whisper-1"})
	if err != nil {
		t.Fatalf("NewOpenAITranscriber: %v", err)
	}
	text, err := tr.Transcribe(context.Background(), transcriber.Request{
		Seq:        7,
		WAV:        []byte("RIFFfake"),
		SampleRate: 16000,
		Language:   "en-US",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
	if gotModel != "whisper-1" || gotLanguage != "en" {
		t.Fatalf("unexpected form values model=%q language=%q", gotModel, gotLanguage)
	}
	if gotFilename != "segment-7.wav" || string(gotAudio) != "RIFFfake" {
		t.Fatalf("unexpected upload %q %q", gotFilename, gotAudio)
	}
}

func TestOpenAITranscriber_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad audio","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	tr, err := NewOpenAITranscriber(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAITranscriber: %v", err)
	}
	if _, err := tr.Transcribe(context.Background(), transcriber.Request{WAV: []byte("x")}); err == nil {
		t.Fatal("expected error from 400 response")
	}
}

func TestNewOpenAITranscriber_RequiresKey(t *testing.T) {
	if _, err := NewOpenAITranscriber(OpenAIConfig{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{"en-US": "en", "pt_BR": "pt", "JA": "ja", "es": "es"}
	for in, want := range tests {
		if got := baseLanguage(in); got != want {
			t.Fatalf("baseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewCloudSpeechTranscriber_Defaults(t *testing.T) {
	tr := NewCloudSpeechTranscriber(CloudSpeechConfig{ProjectID: "p", Location: "  ", Model: " long "})
	if tr.location != "global" || tr.model != "long" {
		t.Fatalf("unexpected defaults location=%q model=%q", tr.location, tr.model)
	}
	if err := tr.Shutdown(); err != nil {
		t.Fatalf("Shutdown without client: %v", err)
	}
}
