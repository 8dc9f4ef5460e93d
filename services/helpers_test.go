package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"achievement-wordle/config"
	"achievement-wordle/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func fixedClock(ts string) func() time.Time {
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return at }
}

type stubSource struct {
	word  string
	ok    bool
	calls atomic.Int32
	delay time.Duration
}

func (s *stubSource) FetchWord(ctx context.Context) (string, bool) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.word, s.ok
}

var errPlatformDown = errors.New("platform down")

// stubPlatform serves canned profiles and per-day achievements.
type stubPlatform struct {
	mu       sync.Mutex
	profiles map[string]bool
	earned   map[string][]EarnedAchievement // key: username|date
	down     bool
	calls    int
	// onEarned runs before AchievementsEarnedOn answers, outside the lock.
	onEarned func()
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{
		profiles: map[string]bool{},
		earned:   map[string][]EarnedAchievement{},
	}
}

func (p *stubPlatform) ProfileExists(ctx context.Context, username string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.down {
		return false, errPlatformDown
	}
	return p.profiles[username], nil
}

func (p *stubPlatform) AchievementsEarnedOn(ctx context.Context, username, date string) ([]EarnedAchievement, error) {
	if p.onEarned != nil {
		p.onEarned()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.down {
		return nil, errPlatformDown
	}
	return p.earned[username+"|"+date], nil
}

func (p *stubPlatform) earn(username, date string, id int64, title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := username + "|" + date
	p.earned[key] = append(p.earned[key], EarnedAchievement{AchievementID: id, Title: title})
}
