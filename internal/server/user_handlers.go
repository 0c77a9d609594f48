package server

import (
	"reelroom/internal/models"
	"reelroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
// @Summary Current user
// @Description The actor's profile with follow relations and liked post ids.
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/profile/:username
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/profile/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetSuggestedUsers handles GET /api/users/suggested
// @Summary Users to follow
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users/suggested [get]
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	users, err := s.userService.Suggested(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// FollowUnfollowUser handles POST /api/users/follow/:id
// @Summary Follow or unfollow a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/follow/{id} [post]
func (s *Server) FollowUnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.userService.ToggleFollow(c.UserContext(), actorID(c), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": res.Message})
}

// UpdateProfile handles POST /api/users/update
// @Summary Edit the actor's profile
// @Description Empty fields keep their value. Images may be data URIs.
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/update [post]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var in service.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = actorID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
