package handlers

import (
	"achievement-wordle/logger"
	"achievement-wordle/middleware"
	"achievement-wordle/services"

	"github.com/gofiber/fiber/v2"
)

// EventHandler exposes the event to the chat-command layer.
type EventHandler struct {
	Events   *services.EventService
	Words    *services.DailyWordService
	Accounts *services.AccountService
	logger   *logger.Logger
}

func NewEventHandler(events *services.EventService, log *logger.Logger) *EventHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EventHandler{
		Events:   events,
		Words:    events.Words,
		Accounts: events.Accounts,
		logger:   log,
	}
}

func SetupEventRoutes(app *fiber.App, h *EventHandler, serviceToken string) {
	api := app.Group("/",
		middleware.ServiceTokenMiddleware(serviceToken, h.logger),
		middleware.ParticipantContextMiddleware(),
	)

	api.Get("/word/today", h.TodayWord)
	api.Post("/accounts/link", h.LinkAccount)
	api.Get("/accounts/verify/:username", h.VerifyAccount)
	api.Get("/accounts/me", h.MyAccount)
	api.Post("/submissions", h.Submit)
	api.Delete("/submissions/today", h.ResetToday)
	api.Get("/status", h.Status)
	api.Post("/letters/match", h.MatchLetters)

	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.Get("/word", h.AdminWord)
	admin.Put("/word", h.OverrideWord)
}

func (h *EventHandler) TodayWord(c *fiber.Ctx) error {
	word, err := h.Words.Resolve(c.UserContext(), h.Events.Today())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"date":    word.Date,
		"letters": word.Letters,
		"message": "Today's letters: " + word.Word,
	})
}

// AdminWord shows a day's word, today unless ?date= is given. Only today's
// word is ever created here.
func (h *EventHandler) AdminWord(c *fiber.Ctx) error {
	date := c.Query("date", h.Words.Today())
	word, err := h.Words.Lookup(c.UserContext(), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"word":    word,
		"message": "The word for " + word.Date + " is " + word.Word + " (" + word.Source + ").",
	})
}

type overrideWordRequest struct {
	Date string `json:"date"`
	Word string `json:"word"`
}

func (h *EventHandler) OverrideWord(c *fiber.Ctx) error {
	var req overrideWordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	if req.Date == "" {
		req.Date = h.Words.Today()
	}

	word, err := h.Words.OverrideWord(c.UserContext(), req.Date, req.Word)
	if err != nil {
		return respondError(c, err)
	}
	h.logger.Info("daily word overridden", "date", word.Date, "by", middleware.ParticipantID(c))
	return c.JSON(fiber.Map{
		"word":    word,
		"message": "Word for " + word.Date + " set to " + word.Word + ".",
	})
}

type linkAccountRequest struct {
	Username string `json:"username"`
}

func (h *EventHandler) LinkAccount(c *fiber.Ctx) error {
	var req linkAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	link, err := h.Accounts.Link(c.UserContext(), middleware.ParticipantID(c), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"link":    link,
		"message": "Successfully linked your Discord account to RetroAchievements user: " + link.ExternalUsername,
	})
}

func (h *EventHandler) VerifyAccount(c *fiber.Ctx) error {
	username := c.Params("username")
	exists := h.Accounts.Verify(c.UserContext(), username)
	message := "RetroAchievements user " + username + " exists."
	if !exists {
		message = "RetroAchievements user " + username + " could not be found."
	}
	return c.JSON(fiber.Map{
		"username": username,
		"exists":   exists,
		"message":  message,
	})
}

func (h *EventHandler) MyAccount(c *fiber.Ctx) error {
	link, err := h.Accounts.Lookup(c.UserContext(), middleware.ParticipantID(c))
	if err != nil {
		return respondError(c, err)
	}
	if link == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "NOT_LINKED",
			"message": "You need to connect your RetroAchievements account first!",
		})
	}
	return c.JSON(fiber.Map{
		"link":    link,
		"message": "Linked to RetroAchievements user: " + link.ExternalUsername,
	})
}

type submitRequest struct {
	Achievements []string `json:"achievements"`
}

func (h *EventHandler) Submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	out, err := h.Events.Submit(c.UserContext(), middleware.ParticipantID(c), req.Achievements)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"status":          out.Status,
		"valid":           out.Status == services.SubmitValid,
		"message":         out.Message,
		"date":            out.Date,
		"submission":      out.Submission,
		"titles":          out.Titles,
		"ref_errors":      out.RefErrors,
		"missing":         out.Missing,
		"mismatches":      out.Mismatches,
		"progress":        out.Progress,
		"became_eligible": out.BecameEligible,
	}
	if out.Word != nil {
		resp["letters"] = out.Word.Letters
	}
	if out.Progress != nil {
		resp["remaining_for_prize"] = out.Progress.RemainingForPrize()
	}
	return c.JSON(resp)
}

func (h *EventHandler) ResetToday(c *fiber.Ctx) error {
	out, err := h.Events.ResetToday(c.UserContext(), middleware.ParticipantID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  out.Status,
		"date":    out.Date,
		"message": out.Message,
	})
}

func (h *EventHandler) Status(c *fiber.Ctx) error {
	view, err := h.Events.Status(c.UserContext(), middleware.ParticipantID(c))
	if err != nil {
		return respondError(c, err)
	}

	message := "Today's letters: " + view.Word.Word
	if view.Link == nil {
		message = "You need to connect your RetroAchievements account first!"
	}
	return c.JSON(fiber.Map{
		"date":                view.Date,
		"letters":             view.Word.Letters,
		"link":                view.Link,
		"submission":          view.Submission,
		"progress":            view.Progress,
		"remaining_for_prize": view.RemainingForPrize,
		"message":             message,
	})
}

type matchLettersRequest struct {
	Titles  []string `json:"titles"`
	Letters []string `json:"letters"`
	// Word is used when Letters is empty.
	Word string `json:"word"`
}

func (h *EventHandler) MatchLetters(c *fiber.Ctx) error {
	var req matchLettersRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	letters := req.Letters
	if len(letters) == 0 && req.Word != "" {
		word, ok := services.NormalizeWord(req.Word)
		if !ok {
			return badRequest(c, "word must be exactly five letters A-Z")
		}
		letters = services.LettersOf(word)
	}

	match := services.MatchLetters(req.Titles, letters)
	return c.JSON(fiber.Map{
		"kind":       match.Kind.String(),
		"valid":      match.Valid(),
		"message":    match.Message,
		"mismatches": match.Mismatches,
	})
}
