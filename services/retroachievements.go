package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"achievement-wordle/utils"
)

// AchievementPlatform is the external authority on who earned what, and when.
type AchievementPlatform interface {
	// ProfileExists reports whether username has a profile. A non-nil error
	// means the platform could not be asked.
	ProfileExists(ctx context.Context, username string) (bool, error)
	// AchievementsEarnedOn lists achievements username unlocked on date
	// (YYYY-MM-DD). A non-nil error means the data is unavailable.
	AchievementsEarnedOn(ctx context.Context, username, date string) ([]EarnedAchievement, error)
}

type EarnedAchievement struct {
	AchievementID int64
	Title         string
	EarnedAt      string
	GameTitle     string
}

// RAClient talks to the RetroAchievements web API.
type RAClient struct {
	BaseURL   string
	Username  string
	WebAPIKey string
	Client    *http.Client
}

func NewRAClient(baseURL, username, webAPIKey string, timeout time.Duration) *RAClient {
	return &RAClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Username:  username,
		WebAPIKey: webAPIKey,
		Client:    utils.NewHTTPClient(timeout),
	}
}

type raProfile struct {
	User string `json:"User"`
	ULID string `json:"ULID"`
}

func (c *RAClient) ProfileExists(ctx context.Context, username string) (bool, error) {
	body, status, err := c.get(ctx, "API_GetUserProfile.php", url.Values{"u": {username}})
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("profile lookup returned %d: %s", status, truncate(body))
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return false, nil
	}

	var profile raProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return false, fmt.Errorf("failed to decode profile: %w", err)
	}
	return profile.User != "" || profile.ULID != "", nil
}

type raEarned struct {
	AchievementID flexInt `json:"AchievementID"`
	Title         string  `json:"Title"`
	Date          string  `json:"Date"`
	GameTitle     string  `json:"GameTitle"`
}

func (c *RAClient) AchievementsEarnedOn(ctx context.Context, username, date string) ([]EarnedAchievement, error) {
	body, status, err := c.get(ctx, "API_GetAchievementsEarnedOnDay.php", url.Values{
		"u": {username},
		"d": {date},
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("achievements-on-day returned %d: %s", status, truncate(body))
	}

	var raw []raEarned
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode achievements-on-day: %w", err)
	}

	earned := make([]EarnedAchievement, 0, len(raw))
	for _, a := range raw {
		earned = append(earned, EarnedAchievement{
			AchievementID: int64(a.AchievementID),
			Title:         a.Title,
			EarnedAt:      a.Date,
			GameTitle:     a.GameTitle,
		})
	}
	return earned, nil
}

func (c *RAClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	params.Set("z", c.Username)
	params.Set("y", c.WebAPIKey)
	target := fmt.Sprintf("%s/%s?%s", c.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call %s: %w", endpoint, utils.StripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}

func truncate(body []byte) string {
	if len(body) > 256 {
		return string(body[:256]) + "..."
	}
	return string(body)
}

// flexInt decodes ids that the API sends either as numbers or as strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid achievement id %s: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}
