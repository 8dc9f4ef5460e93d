package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStoresAPIWordOnce(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{word: "crane", ok: true}
	svc := NewDailyWordService(newTestDB(t), source, nil)

	first, err := svc.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", first.Word)
	assert.Equal(t, []string{"C", "R", "A", "N", "E"}, []string(first.Letters))
	assert.Equal(t, models.WordSourceAPI, first.Source)

	source.word = "slate"
	again, err := svc.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "CRANE", again.Word)
	assert.EqualValues(t, 1, source.calls.Load())
}

func TestResolveFallsBackWhenSourceFails(t *testing.T) {
	ctx := context.Background()

	for name, source := range map[string]*stubSource{
		"unavailable":  {ok: false},
		"invalid word": {word: "CRANES", ok: true},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewDailyWordService(newTestDB(t), source, nil)
			word, err := svc.Resolve(ctx, "2024-03-01")
			require.NoError(t, err)
			assert.Equal(t, "LIGHT", word.Word)
			assert.Equal(t, models.WordSourceFallback, word.Source)
			assert.Equal(t, []string{"L", "I", "G", "H", "T"}, []string(word.Letters))
		})
	}
}

func TestResolveWithoutSourceUsesFallback(t *testing.T) {
	svc := NewDailyWordService(newTestDB(t), nil, nil)
	word, err := svc.Resolve(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "BRAVE", word.Word)
}

func TestResolveRejectsBadDate(t *testing.T) {
	svc := NewDailyWordService(newTestDB(t), &stubSource{word: "crane", ok: true}, nil)
	_, err := svc.Resolve(context.Background(), "yesterday")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestResolveConcurrentCallersAgree(t *testing.T) {
	source := &stubSource{word: "crane", ok: true, delay: 20 * time.Millisecond}
	svc := NewDailyWordService(newTestDB(t), source, nil)

	const n = 8
	results := make([]*models.DailyWord, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Resolve(context.Background(), "2024-03-01")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
		assert.Equal(t, "CRANE", results[i].Word)
	}

	var count int64
	require.NoError(t, svc.DB.Model(&models.DailyWord{}).Where("date = ?", "2024-03-01").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveAcrossInstancesKeepsFirstWord(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a := NewDailyWordService(db, &stubSource{word: "crane", ok: true}, nil)
	b := NewDailyWordService(db, &stubSource{word: "slate", ok: true}, nil)

	first, err := a.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)

	// b never saw the row in memory; the insert conflict must hand it a's word.
	stored, err := b.insertOrReread(ctx, &models.DailyWord{
		ID: "other", Date: "2024-03-01", Word: "SLATE", Letters: []string{"S", "L", "A", "T", "E"}, Source: models.WordSourceAPI,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "CRANE", stored.Word)
}

func TestOverrideWord(t *testing.T) {
	ctx := context.Background()
	svc := NewDailyWordService(newTestDB(t), &stubSource{word: "crane", ok: true}, nil)
	svc.Now = fixedClock("2024-03-01T09:00:00Z")

	_, err := svc.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, "2024-03-02")
	require.NoError(t, err)

	overridden, err := svc.OverrideWord(ctx, "2024-03-01", " pious ")
	require.NoError(t, err)
	assert.Equal(t, "PIOUS", overridden.Word)
	assert.Equal(t, []string{"P", "I", "O", "U", "S"}, []string(overridden.Letters))
	assert.Equal(t, models.WordSourceAdmin, overridden.Source)

	resolved, err := svc.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "PIOUS", resolved.Word)

	other, err := svc.Resolve(ctx, "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", other.Word)
}

func TestOverrideWordCreatesMissingDay(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{word: "crane", ok: true}
	svc := NewDailyWordService(newTestDB(t), source, nil)
	svc.Now = fixedClock("2024-04-01T00:00:05Z")

	_, err := svc.OverrideWord(ctx, "2024-04-01", "magic")
	require.NoError(t, err)

	word, err := svc.Resolve(ctx, "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, "MAGIC", word.Word)
	assert.EqualValues(t, 0, source.calls.Load())
}

func TestOverrideWordRejectsInvalidWords(t *testing.T) {
	ctx := context.Background()
	svc := NewDailyWordService(newTestDB(t), &stubSource{word: "crane", ok: true}, nil)
	svc.Now = fixedClock("2024-03-01T09:00:00Z")
	_, err := svc.Resolve(ctx, "2024-03-01")
	require.NoError(t, err)

	for _, raw := range []string{"CRANES", "CR4NE", "", "abc"} {
		_, err := svc.OverrideWord(ctx, "2024-03-01", raw)
		require.Error(t, err, raw)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput), raw)
		assert.Equal(t, invalidWordMessage, apperrors.UserMessage(err))
	}

	word, err := svc.WordForDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", word.Word)
}

func TestOverrideWordOnlyChangesToday(t *testing.T) {
	ctx := context.Background()
	svc := NewDailyWordService(newTestDB(t), &stubSource{word: "asset", ok: true}, nil)
	svc.Now = fixedClock("2024-03-01T12:00:00Z")

	past, err := svc.Resolve(ctx, "2024-02-01")
	require.NoError(t, err)

	for _, date := range []string{"2024-02-01", "2024-03-02"} {
		_, err := svc.OverrideWord(ctx, date, "crane")
		require.Error(t, err, date)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput), date)
		assert.Equal(t, "Only today's word (2024-03-01) can be changed.", apperrors.UserMessage(err))
	}

	stored, err := svc.WordForDate(ctx, "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, past.ID, stored.ID)
	assert.Equal(t, "ASSET", stored.Word)

	future, err := svc.WordForDate(ctx, "2024-03-02")
	require.NoError(t, err)
	assert.Nil(t, future)
}

func TestLookupCreatesOnlyToday(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{word: "asset", ok: true}
	svc := NewDailyWordService(newTestDB(t), source, nil)
	svc.Now = fixedClock("2024-03-01T12:00:00Z")

	for _, date := range []string{"1999-12-31", "2030-01-01"} {
		_, err := svc.Lookup(ctx, date)
		require.Error(t, err, date)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), date)

		stored, err := svc.WordForDate(ctx, date)
		require.NoError(t, err)
		assert.Nil(t, stored, date)
	}
	assert.EqualValues(t, 0, source.calls.Load())

	today, err := svc.Lookup(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "ASSET", today.Word)

	_, err = svc.Resolve(ctx, "2024-02-01")
	require.NoError(t, err)
	past, err := svc.Lookup(ctx, "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", past.Date)

	_, err = svc.Lookup(ctx, "yesterday")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestResolveSurvivesFirstCallerCancel(t *testing.T) {
	source := &stubSource{word: "crane", ok: true, delay: 100 * time.Millisecond}
	svc := NewDailyWordService(newTestDB(t), source, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(cancelled, "2024-03-01")
		first <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	word, err := svc.Resolve(context.Background(), "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", word.Word)
	<-first
}
