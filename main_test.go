package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"achievement-wordle/handlers"
	"achievement-wordle/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthIsPublic(t *testing.T) {
	events := services.NewEventService(nil, nil, nil, nil, nil, nil)
	app := newApp(handlers.NewEventHandler(events, nil), "token")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/status", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"word", "get"}, {"word", "set"}, {"archive"}} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestDateArg(t *testing.T) {
	assert.Equal(t, "2024-03-01", dateArg([]string{"2024-03-01"}))
	assert.Len(t, dateArg(nil), len("2006-01-02"))
}
