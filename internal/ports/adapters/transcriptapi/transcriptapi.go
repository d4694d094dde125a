package transcriptapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/vodclip/internal/domain/transcript"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

const defaultTimeout = 60 * time.Second

// Adapter fetches transcripts from an HTTP transcript service:
//
//	GET {base}/v1/transcripts?video=<locator>
//
// The response is either {"segments":[{"start","end","text"}]} or {"text": "..."}.
type Adapter struct {
	key     string
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  zerolog.Logger
}

func New(logger zerolog.Logger, baseURL, apiKey string, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		key:     apiKey,
		baseURL: normalizeBaseURL(baseURL),
		timeout: timeout,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With().Str("component", "transcript-api").Logger(),
	}
}

type response struct {
	Text     string          `json:"text"`
	Segments []types.Segment `json:"segments"`
}

func (a *Adapter) FetchTranscript(ctx context.Context, locator string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	u := a.baseURL + "/v1/transcripts?" + url.Values{"video": {locator}}.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript api: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		a.logger.Debug().Str("locator", locator).Msg("no transcript for video")
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return "", fmt.Errorf("transcript api status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("transcript api status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw response
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode transcript api response: %w", err)
	}
	if len(raw.Segments) > 0 {
		return transcript.FormatBracketed(raw.Segments), nil
	}
	return strings.TrimSpace(raw.Text), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
