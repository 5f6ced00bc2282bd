package emotion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestClientLabelUsesRemoteService(t *testing.T) {
	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/label" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req labelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotText = req.Text
		json.NewEncoder(w).Encode(labelResponse{Label: string(EmotionIsolated)})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	label, analyzed := client.Label(context.Background(), "아무도 내 곁에 없다")
	if !analyzed {
		t.Fatalf("expected remote classification")
	}
	if label != EmotionIsolated {
		t.Fatalf("label = %s, want %s", label, EmotionIsolated)
	}
	if gotText != "아무도 내 곁에 없다" {
		t.Fatalf("service received %q", gotText)
	}
}

func TestClientLabelFallsBackToAnalyzerOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	label, analyzed := client.Label(context.Background(), "밤길이 무서워")
	if analyzed {
		t.Fatalf("expected degraded mode")
	}
	if label != EmotionFearful {
		t.Fatalf("fallback label = %s, want %s", label, EmotionFearful)
	}
}

func TestClientLabelEmptyTextDrawsFromFallbackSet(t *testing.T) {
	client := NewClient("")
	label, analyzed := client.Label(context.Background(), "")
	if analyzed {
		t.Fatalf("no base URL must mean degraded mode")
	}
	found := false
	for _, e := range fallbackEmotions {
		if e == label {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("fallback label %s not in the fallback set", label)
	}
}

func TestClientLabelEmptyTextConcurrent(t *testing.T) {
	// Label runs on every websocket read loop, so the degraded-mode
	// random draw must hold up under concurrent callers.
	client := NewClient("")

	var wg sync.WaitGroup
	results := make([]Emotion, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			label, analyzed := client.Label(context.Background(), "")
			if analyzed {
				t.Errorf("no base URL must mean degraded mode")
			}
			results[i] = label
		}(i)
	}
	wg.Wait()

	for i, label := range results {
		if !Known(label) {
			t.Fatalf("draw %d produced %q, outside the enum", i, label)
		}
	}
}

func TestClientLabelUnknownRemoteLabelDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(labelResponse{Label: "기쁨"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	label, analyzed := client.Label(context.Background(), "뭐든지")
	if analyzed {
		t.Fatalf("out-of-enum label should count as degraded")
	}
	if label != DefaultEmotion {
		t.Fatalf("label = %s, want the default", label)
	}
}

func TestClientLabelUnreachableBackendStillAnswers(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url)
	label, analyzed := client.Label(context.Background(), "스트레스가 심하다")
	if analyzed {
		t.Fatalf("unreachable backend must degrade")
	}
	if label != EmotionStressed {
		t.Fatalf("label = %s, want %s", label, EmotionStressed)
	}
}
