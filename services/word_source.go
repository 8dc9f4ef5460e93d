package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"achievement-wordle/logger"
	"achievement-wordle/utils"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WordSource supplies a candidate word for today. Implementations never
// return an error: any failure is reported as ok == false.
type WordSource interface {
	FetchWord(ctx context.Context) (word string, ok bool)
}

var fiveLetters = regexp.MustCompile(`^[A-Z]{5}$`)

// toUpper builds a fresh Caser per call; Casers are not safe for concurrent use.
func toUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// NormalizeWord trims and uppercases raw and reports whether the result is
// exactly five letters A-Z.
func NormalizeWord(raw string) (string, bool) {
	word := toUpper(strings.TrimSpace(raw))
	if !fiveLetters.MatchString(word) {
		return "", false
	}
	return word, true
}

// LettersOf splits an already normalised word into its letters.
func LettersOf(word string) []string {
	return strings.Split(word, "")
}

// WordleAPIClient fetches the daily word from a public word-of-the-day API.
type WordleAPIClient struct {
	URL    string
	Client *http.Client
	logger *logger.Logger
}

func NewWordleAPIClient(url string, timeout time.Duration, log *logger.Logger) *WordleAPIClient {
	if log == nil {
		log = logger.Nop()
	}
	return &WordleAPIClient{
		URL:    url,
		Client: utils.NewHTTPClient(timeout),
		logger: log,
	}
}

func (c *WordleAPIClient) FetchWord(ctx context.Context) (string, bool) {
	start := time.Now()
	word, status, err := c.fetch(ctx)
	c.logger.Debug("word api call",
		"event", "wordle_api_call",
		"duration_ms", time.Since(start).Milliseconds(),
		"status", status,
	)
	if err != nil {
		c.logger.Warn("word api unavailable", "event", "wordle_api_fetch_error", "error", err)
		return "", false
	}
	return word, true
}

func (c *WordleAPIClient) fetch(ctx context.Context) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call word api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("word api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read word api response: %w", err)
	}

	raw, err := extractWord(body)
	if err != nil {
		return "", resp.StatusCode, err
	}

	word, ok := NormalizeWord(raw)
	if !ok {
		return "", resp.StatusCode, fmt.Errorf("invalid word format: %q", raw)
	}
	return word, resp.StatusCode, nil
}

var errUnknownWordShape = errors.New("invalid response format from word api")

// extractWord accepts "word", {"word": ...}, {"today": ...},
// {"solution": ...} or ["word", ...].
func extractWord(body []byte) (string, error) {
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(body, &asObject); err == nil {
		for _, key := range []string{"word", "today", "solution"} {
			raw, found := asObject[key]
			if !found {
				continue
			}
			var value string
			if err := json.Unmarshal(raw, &value); err == nil {
				return value, nil
			}
		}
		return "", errUnknownWordShape
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(body, &asArray); err == nil && len(asArray) > 0 {
		var first string
		if err := json.Unmarshal(asArray[0], &first); err == nil {
			return first, nil
		}
	}

	return "", errUnknownWordShape
}
