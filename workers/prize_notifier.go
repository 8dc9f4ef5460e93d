package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"achievement-wordle/logger"
	"achievement-wordle/models"
	"achievement-wordle/services"
	"achievement-wordle/utils"
)

const defaultPrizeBatchSize = 50

// PrizeNotifier announces newly eligible participants on a webhook and then
// sets their prize_notified flag.
type PrizeNotifier struct {
	Progress   *services.ProgressService
	WebhookURL string
	HTTPClient *http.Client
	BatchSize  int
	interval   time.Duration
	logger     *logger.Logger
}

func NewPrizeNotifier(progress *services.ProgressService, webhookURL string, interval time.Duration, log *logger.Logger) *PrizeNotifier {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PrizeNotifier{
		Progress:   progress,
		WebhookURL: webhookURL,
		HTTPClient: utils.NewHTTPClient(30 * time.Second),
		BatchSize:  defaultPrizeBatchSize,
		interval:   interval,
		logger:     log,
	}
}

func (w *PrizeNotifier) Start(ctx context.Context) {
	w.logger.Info("🔁 starting prize notifier", "interval", w.interval.String())
	go w.run(ctx)
}

func (w *PrizeNotifier) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("prize notifier stopped")
			return
		case <-ticker.C:
			if _, err := w.NotifyPending(ctx); err != nil {
				w.logger.Error("❌ prize notification batch failed", "error", err)
			}
		}
	}
}

// NotifyPending posts one message per pending participant and returns how
// many were marked notified. A failed post leaves the participant pending for
// the next tick.
func (w *PrizeNotifier) NotifyPending(ctx context.Context) (int, error) {
	limit := w.BatchSize
	if limit <= 0 {
		limit = defaultPrizeBatchSize
	}
	pending, err := w.Progress.PendingPrizeNotifications(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	notified := 0
	for _, counter := range pending {
		if err := w.post(ctx, counter); err != nil {
			w.logger.Warn("failed to post prize notification",
				"participant_id", counter.ParticipantID, "error", err)
			continue
		}
		marked, err := w.Progress.MarkPrizeNotified(ctx, counter.ParticipantID)
		if err != nil {
			return notified, err
		}
		if marked {
			notified++
		}
	}

	w.logger.Info("✅ prize notifications sent", "count", notified, "pending", len(pending))
	return notified, nil
}

type webhookMessage struct {
	Content string `json:"content"`
}

// PrizeMessage is the announcement text for counter's participant.
func PrizeMessage(counter models.ProgressCounter) string {
	return fmt.Sprintf("🏆 <@%s> has completed %d successful daily submissions and is now eligible for the prize!",
		counter.ParticipantID, counter.SuccessfulCount)
}

func (w *PrizeNotifier) post(ctx context.Context, counter models.ProgressCounter) error {
	payload, err := json.Marshal(webhookMessage{Content: PrizeMessage(counter)})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", utils.StripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
