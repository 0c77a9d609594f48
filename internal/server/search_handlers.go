package server

import (
	"errors"

	"reelroom/internal/assistant"
	"reelroom/internal/featureflags"
	"reelroom/internal/middleware"
	"reelroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles POST /api/search
// @Summary Search users by name
// @Description Case-insensitive match on full name and username.
// @Tags search
// @Accept json
// @Produce json
// @Param request body object{userQuery=string} true "Query"
// @Success 200 {object} object{message=string,users=[]models.UserSummary}
// @Security BearerAuth
// @Router /search [post]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	var req struct {
		UserQuery string `json:"userQuery"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	users, err := s.searchService.SearchUsers(c.UserContext(), actorID(c), req.UserQuery)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Search Successful",
		"users":   users,
	})
}

// AssistantEnabled hides the assistant endpoint when the ai_assistant flag
// is off for the caller.
func (s *Server) AssistantEnabled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(featureflags.AIAssistant, actorID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundMessage("Not found"))
		}
		return c.Next()
	}
}

// AskAssistant handles POST /api/ai
// @Summary Ask the movie assistant
// @Description An empty prompt is replaced by a default greeting.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object{prompt=string} true "Prompt"
// @Success 200 {object} object{success=bool,result=string}
// @Failure 429 {object} object{success=bool,error=string}
// @Failure 500 {object} object{success=bool,error=string}
// @Security BearerAuth
// @Router /ai [post]
func (s *Server) AskAssistant(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.assistant.Ask(c.UserContext(), req.Prompt)
	if err != nil {
		if errors.Is(err, assistant.ErrRateLimited) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later.",
			})
		}
		middleware.Logger.ErrorContext(c.UserContext(), "assistant request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Something went wrong.",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}
