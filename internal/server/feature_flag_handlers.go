package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns every configured flag evaluated for the current user.
// @Summary Evaluated feature flags
// @Tags flags
// @Produce json
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(s.featureFlags.Snapshot(actorID(c)))
}
