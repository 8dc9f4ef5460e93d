package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"achievement-wordle/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackWordByDayOfYear(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-01", "BRAVE"}, // day 1
		{"2024-01-25", "ASSET"}, // day 25 wraps to 0
		{"2024-03-01", "LIGHT"}, // leap year, day 61
		{"2023-03-01", "KNIFE"}, // day 60
		{"2024-12-31", "QUIET"}, // day 366
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			day, err := ParseDayKey(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FallbackWord(day))
		})
	}
	assert.Len(t, FallbackWords, 25)
}

func TestDayKeys(t *testing.T) {
	local := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "2024-03-02", TodayKey(local))

	prev, err := PreviousDayKey("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)

	_, err = ParseDayKey("03/01/2024")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"crane", "CRANE", true},
		{"  Slate\n", "SLATE", true},
		{"CRANES", "", false},
		{"CR4NE", "", false},
		{"", "", false},
		{"crâne", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeWord(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
	assert.Equal(t, []string{"C", "R", "A", "N", "E"}, LettersOf("CRANE"))
}

func TestExtractWordShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `"crane"`, "crane"},
		{"word field", `{"word":"crane"}`, "crane"},
		{"today field", `{"today":"slate"}`, "slate"},
		{"solution field", `{"solution":"pious","id":1}`, "pious"},
		{"array", `["pious","other"]`, "pious"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractWord([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, body := range []string{`{"other":"crane"}`, `[]`, `[1]`, `42`, `not json`} {
		_, err := extractWord([]byte(body))
		assert.ErrorIs(t, err, errUnknownWordShape, body)
	}
}

func TestWordleAPIClientFetchWord(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"word":"crane"}`))
		}))
		defer srv.Close()

		word, ok := NewWordleAPIClient(srv.URL, time.Second, nil).FetchWord(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "CRANE", word)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, ok := NewWordleAPIClient(srv.URL, time.Second, nil).FetchWord(context.Background())
		assert.False(t, ok)
	})

	t.Run("bad word", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"cranes"`))
		}))
		defer srv.Close()

		_, ok := NewWordleAPIClient(srv.URL, time.Second, nil).FetchWord(context.Background())
		assert.False(t, ok)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`"crane"`))
		}))
		defer srv.Close()

		_, ok := NewWordleAPIClient(srv.URL, 20*time.Millisecond, nil).FetchWord(context.Background())
		assert.False(t, ok)
	})
}
