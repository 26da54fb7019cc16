package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/oauth"
	"github.com/postwavehq/postwave/internal/service"
	"github.com/postwavehq/postwave/pkg/utils"
)

type ConnectionHandler struct {
	s   service.ConnectionService
	cfg config.Config
}

func NewConnectionHandler(s service.ConnectionService, cfg config.Config) *ConnectionHandler {
	return &ConnectionHandler{s: s, cfg: cfg}
}

func (h *ConnectionHandler) AddSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	authURL, err := h.s.BeginConnect(c.Context(), userID, platform)
	if err != nil {
		var quotaErr *service.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": quotaErr.Error(),
			})
		}
		if errors.Is(err, oauth.ErrUnsupportedPlatform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unsupported platform",
			})
		}
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start account connection",
		})
	}

	return c.Redirect(authURL)
}

func (h *ConnectionHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	// the session cookie is present when the browser followed the platform
	// redirect; without it the state record alone identifies the user
	var observedUserID int64
	if tokenString := c.Cookies(h.cfg.CookieName); tokenString != "" {
		if claims, err := utils.ValidateToken(h.cfg.SecretKey, tokenString); err == nil {
			observedUserID, _ = strconv.ParseInt(claims.UserID, 10, 64)
		}
	}

	_, err := h.s.CompleteConnect(c.Context(), platform, code, state, observedUserID)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid or expired authorization state",
			})
		}
		var exchangeErr *oauth.ExchangeError
		if errors.As(err, &exchangeErr) {
			slog.Info(exchangeErr.Error())
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Platform rejected the authorization",
			})
		}
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *ConnectionHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.s.List(c.Context(), userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *ConnectionHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)
	hardDelete := c.QueryBool("purge", false)

	err := h.s.Disconnect(c.Context(), userID, int64(accountID), hardDelete)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
