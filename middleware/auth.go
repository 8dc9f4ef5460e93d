package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderParticipantID = "X-Participant-ID"
	HeaderUserRoles     = "X-User-Roles"

	localParticipantID = "participant_id"
	localRoles         = "user_roles"

	RoleAdmin = "admin"
)

// ParticipantContextMiddleware attaches the chat participant id and roles
// forwarded by the command layer. A missing participant id is rejected.
func ParticipantContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		participantID := strings.TrimSpace(c.Get(HeaderParticipantID))
		if participantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "UNAUTHORIZED",
				"message": "missing " + HeaderParticipantID,
			})
		}

		c.Locals(localParticipantID, participantID)
		c.Locals(localRoles, ParseRoles(c.Get(HeaderUserRoles)))
		return c.Next()
	}
}

// RequireRole must run after ParticipantContextMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasRole(c, role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "FORBIDDEN",
				"message": "You don't have permission to do that.",
			})
		}
		return c.Next()
	}
}

func ParseRoles(header string) []string {
	var roles []string
	for _, r := range strings.Split(header, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			roles = append(roles, strings.ToLower(r))
		}
	}
	return roles
}

func ParticipantID(c *fiber.Ctx) string {
	id, _ := c.Locals(localParticipantID).(string)
	return id
}

func HasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals(localRoles).([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
