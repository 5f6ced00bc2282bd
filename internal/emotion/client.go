package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// fallbackEmotions is the small fixed subset drawn from when the label
// service is down and the submitted text gives the keyword analyzer
// nothing to work with.
var fallbackEmotions = []Emotion{
	EmotionFearful,
	EmotionAnxious,
	EmotionIsolated,
	EmotionHurt,
	EmotionConfused,
}

// Client calls the external emotion-classification service. A zero
// base URL puts the client permanently in degraded mode: every request
// resolves locally and nothing crosses the network.
type Client struct {
	baseURL string
	httpc   *http.Client

	// rngMu guards rng: Label is called from concurrent websocket read
	// loops and *rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

type labelRequest struct {
	Text string `json:"text"`
}

type labelResponse struct {
	Label string `json:"label"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Label classifies free text. It never fails: a missing configuration,
// network error, non-2xx status, or out-of-enum label all degrade to
// the local analyzer (or a random fallback emotion for empty text).
// The bool reports whether the remote service produced the answer.
func (c *Client) Label(ctx context.Context, text string) (Emotion, bool) {
	if c == nil || c.baseURL == "" {
		return c.fallback(text), false
	}

	label, err := c.remoteLabel(ctx, text)
	if err != nil {
		return c.fallback(text), false
	}
	if !Known(label) {
		return DefaultEmotion, false
	}
	return label, true
}

func (c *Client) remoteLabel(ctx context.Context, text string) (Emotion, error) {
	body, err := json.Marshal(labelRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("encode label request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/label", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build label request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("label request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("label request: HTTP %d", resp.StatusCode)
	}

	var decoded labelResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode label response: %w", err)
	}
	return Emotion(decoded.Label), nil
}

func (c *Client) fallback(text string) Emotion {
	if strings.TrimSpace(text) != "" {
		return AnalyzeText(text)
	}
	if c == nil || c.rng == nil {
		return DefaultEmotion
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return fallbackEmotions[c.rng.Intn(len(fallbackEmotions))]
}
