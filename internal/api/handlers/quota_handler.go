package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postwavehq/postwave/internal/limits"
	"github.com/postwavehq/postwave/internal/service"
)

type QuotaHandler struct {
	s service.QuotaService
}

func NewQuotaHandler(s service.QuotaService) *QuotaHandler {
	return &QuotaHandler{s: s}
}

func (h *QuotaHandler) GetUsage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	kinds := []limits.LimitKind{
		limits.LimitDailyGenerations,
		limits.LimitSocialAccounts,
		limits.LimitTeamMembers,
		limits.LimitTemplates,
	}

	usage := make(map[string]limits.UsageCheck, len(kinds))
	for _, kind := range kinds {
		check, err := h.s.CheckLimit(c.Context(), userID, kind)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to compute usage",
			})
		}
		usage[string(kind)] = check
	}

	return c.Status(fiber.StatusOK).JSON(usage)
}
