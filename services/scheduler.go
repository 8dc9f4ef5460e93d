package services

import (
	"context"
	"time"

	"achievement-wordle/logger"

	"github.com/go-co-op/gocron/v2"
)

const scheduledJobTimeout = 2 * time.Minute

// StartEventScheduler registers the daily jobs and starts the scheduler.
// archiver may be nil, in which case no archive job is registered.
func StartEventScheduler(words *DailyWordService, archiver *DailyArchiver, log *logger.Logger) (gocron.Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	// Shortly after midnight: create the new day's word so the first
	// participant does not wait on the word API.
	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 30))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), scheduledJobTimeout)
			defer cancel()
			WarmTodayWord(ctx, words, time.Now(), log)
		}),
		gocron.WithName("warm-daily-word"),
	); err != nil {
		return nil, err
	}

	if archiver != nil {
		if _, err := sched.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 10, 0))),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), scheduledJobTimeout)
				defer cancel()
				ArchivePreviousDay(ctx, archiver, time.Now(), log)
			}),
			gocron.WithName("archive-previous-day"),
		); err != nil {
			return nil, err
		}
	}

	sched.Start()
	log.Info("⏰ event scheduler started", "archive", archiver != nil)
	return sched, nil
}

// WarmTodayWord resolves the word for now's day and logs the result.
func WarmTodayWord(ctx context.Context, words *DailyWordService, now time.Time, log *logger.Logger) {
	word, err := words.Resolve(ctx, TodayKey(now))
	if err != nil {
		log.Error("[Scheduler] failed to resolve daily word", "error", err)
		return
	}
	log.Info("[Scheduler] daily word ready", "date", word.Date, "source", word.Source)
}

// ArchivePreviousDay archives the day before now.
func ArchivePreviousDay(ctx context.Context, archiver *DailyArchiver, now time.Time, log *logger.Logger) {
	date, err := PreviousDayKey(TodayKey(now))
	if err != nil {
		log.Error("[Scheduler] bad archive date", "error", err)
		return
	}
	if _, err := archiver.ArchiveDay(ctx, date); err != nil {
		log.Error("[Scheduler] archive failed", "date", date, "error", err)
	}
}
