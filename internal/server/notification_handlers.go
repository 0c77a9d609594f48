package server

import (
	"reelroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications. Listing marks every
// notification read; the response shows the state before that.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} models.Notification
// @Security BearerAuth
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	notes, err := s.notificationService.List(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(notes)
}

// DeleteNotifications handles DELETE /api/notifications
// @Summary Clear notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} object{message=string}
// @Security BearerAuth
// @Router /notifications [delete]
func (s *Server) DeleteNotifications(c *fiber.Ctx) error {
	if _, err := s.notificationService.Clear(c.UserContext(), actorID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications deleted successfully"})
}
