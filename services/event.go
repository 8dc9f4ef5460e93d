package services

import (
	"context"
	"strings"
	"time"

	"achievement-wordle/logger"
	"achievement-wordle/models"
)

// SubmitStatus tags the result of EventService.Submit. Exactly one applies.
type SubmitStatus string

const (
	SubmitNotLinked           SubmitStatus = "not_linked"
	SubmitInvalidRefs         SubmitStatus = "invalid_refs"
	SubmitUnavailable         SubmitStatus = "unavailable"
	SubmitMissingAchievements SubmitStatus = "missing_achievements"
	SubmitLetterMismatch      SubmitStatus = "letter_mismatch"
	SubmitValid               SubmitStatus = "valid"
	// SubmitSuperseded: a newer submission (or a reset) replaced this one
	// before its validation was recorded. Nothing was counted.
	SubmitSuperseded SubmitStatus = "superseded"
)

type SubmitOutcome struct {
	Status         SubmitStatus
	Message        string
	Date           string
	Word           *models.DailyWord
	Link           *models.AccountLink
	Submission     *models.Submission
	Titles         []string
	RefErrors      []string
	Missing        []int64
	Mismatches     []LetterMismatch
	Progress       *models.ProgressCounter
	BecameEligible bool
}

type StatusView struct {
	Date              string
	Word              *models.DailyWord
	Link              *models.AccountLink
	Submission        *models.Submission
	Progress          *models.ProgressCounter
	RemainingForPrize int64
}

type ResetStatus string

const (
	ResetDone      ResetStatus = "reset"
	ResetNothing   ResetStatus = "nothing_to_reset"
	ResetNotLinked ResetStatus = "not_linked"
)

type ResetOutcome struct {
	Status  ResetStatus
	Message string
	Date    string
	Link    *models.AccountLink
}

const (
	notLinkedMessage  = "You need to connect your RetroAchievements account first!"
	supersededMessage = "A newer submission for today replaced this one before it finished validating."
)

// EventService runs participant commands end to end over the event services.
type EventService struct {
	Words       *DailyWordService
	Accounts    *AccountService
	Validator   *SubmissionValidator
	Submissions *SubmissionService
	Progress    *ProgressService
	Now         func() time.Time
	logger      *logger.Logger
}

func NewEventService(
	words *DailyWordService,
	accounts *AccountService,
	validator *SubmissionValidator,
	submissions *SubmissionService,
	progress *ProgressService,
	log *logger.Logger,
) *EventService {
	if log == nil {
		log = logger.Nop()
	}
	return &EventService{
		Words:       words,
		Accounts:    accounts,
		Validator:   validator,
		Submissions: submissions,
		Progress:    progress,
		Now:         time.Now,
		logger:      log,
	}
}

func (e *EventService) Today() string {
	return TodayKey(e.Now())
}

// Submit records refs as today's submission for participantID and validates
// it. Domain failures are reported through SubmitOutcome.Status; the error is
// reserved for persistence failures.
func (e *EventService) Submit(ctx context.Context, participantID string, refs []string) (*SubmitOutcome, error) {
	date := e.Today()
	out := &SubmitOutcome{Date: date}

	word, err := e.Words.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	out.Word = word

	link, err := e.Accounts.Lookup(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		out.Status, out.Message = SubmitNotLinked, notLinkedMessage
		return out, nil
	}
	out.Link = link

	ids, refErrs := ParseAchievementRefs(refs)
	if len(refErrs) > 0 {
		out.Status, out.RefErrors = SubmitInvalidRefs, refErrs
		out.Message = strings.Join(refErrs, "\n")
		return out, nil
	}

	sub, err := e.Submissions.Submit(ctx, participantID, date, ids, refs)
	if err != nil {
		return nil, err
	}
	out.Submission = sub

	result := e.Validator.Validate(ctx, link.ExternalUsername, ids, date)
	if !result.Valid() {
		out.Missing = result.Missing
		status := SubmitMissingAchievements
		if result.Outcome == ValidationUnavailable {
			status = SubmitUnavailable
		}
		return e.finish(ctx, out, status, false, result.Message)
	}
	out.Titles = result.Titles

	match := MatchLetters(result.Titles, word.Letters)
	if !match.Valid() {
		out.Mismatches = match.Mismatches
		return e.finish(ctx, out, SubmitLetterMismatch, false, match.Message)
	}
	return e.finish(ctx, out, SubmitValid, true, match.Message)
}

// finish stamps the validation onto the submission and, only if it was still
// the live row, counts the outcome.
func (e *EventService) finish(ctx context.Context, out *SubmitOutcome, status SubmitStatus, valid bool, message string) (*SubmitOutcome, error) {
	marked, err := e.Submissions.MarkValidated(ctx, out.Submission.ID, valid, message)
	if err != nil {
		return nil, err
	}
	if !marked {
		out.Status, out.Message = SubmitSuperseded, supersededMessage
		return out, nil
	}

	state := models.ValidationInvalid
	if valid {
		state = models.ValidationValid
	}
	validatedAt := e.Now().UTC()
	out.Submission.ValidationState = state
	out.Submission.ValidationMessage = &message
	out.Submission.ValidatedAt = &validatedAt

	update, err := e.Progress.RecordOutcome(ctx, out.Submission.ParticipantID, out.Date, valid)
	if err != nil {
		return nil, err
	}
	out.Status, out.Message = status, message
	out.Progress = update.Counter
	out.BecameEligible = update.BecameEligible

	e.logger.Info("submission validated",
		"participant_id", out.Submission.ParticipantID,
		"date", out.Date,
		"submission_id", out.Submission.ID,
		"status", string(status),
		"successful", update.Counter.SuccessfulCount,
		"total", update.Counter.TotalCount,
	)
	return out, nil
}

// Status gathers what a participant sees for today. Link, Submission and
// Progress are nil when they do not exist yet.
func (e *EventService) Status(ctx context.Context, participantID string) (*StatusView, error) {
	date := e.Today()
	word, err := e.Words.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	view := &StatusView{Date: date, Word: word, RemainingForPrize: models.PrizeThreshold}

	if view.Link, err = e.Accounts.Lookup(ctx, participantID); err != nil {
		return nil, err
	}
	if view.Link == nil {
		return view, nil
	}
	if view.Submission, err = e.Submissions.Get(ctx, participantID, date); err != nil {
		return nil, err
	}
	if view.Progress, err = e.Progress.Get(ctx, participantID); err != nil {
		return nil, err
	}
	view.RemainingForPrize = view.Progress.RemainingForPrize()
	return view, nil
}

// ResetToday removes today's submission so the participant can start over.
// Progress already counted is kept.
func (e *EventService) ResetToday(ctx context.Context, participantID string) (*ResetOutcome, error) {
	date := e.Today()
	out := &ResetOutcome{Date: date}

	link, err := e.Accounts.Lookup(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		out.Status, out.Message = ResetNotLinked, notLinkedMessage
		return out, nil
	}
	out.Link = link

	removed, err := e.Submissions.Reset(ctx, participantID, date)
	if err != nil {
		return nil, err
	}
	if !removed {
		out.Status, out.Message = ResetNothing, "You don't have a submission for today to reset."
		return out, nil
	}
	out.Status, out.Message = ResetDone, "Successfully reset your submission for "+date+"."
	return out, nil
}
