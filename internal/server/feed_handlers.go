package server

import (
	"reelroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllPosts handles GET /api/posts/all?type=post|review
// @Summary List all posts
// @Description Newest first. An unknown type is ignored.
// @Tags feed
// @Produce json
// @Param type query string false "post or review"
// @Success 200 {array} models.Post
// @Security BearerAuth
// @Router /posts/all [get]
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.ListAll(c.UserContext(), c.Query("type"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingPosts handles GET /api/posts/following
// @Summary Plain posts from followed users
// @Tags feed
// @Produce json
// @Success 200 {array} models.Post
// @Security BearerAuth
// @Router /posts/following [get]
func (s *Server) GetFollowingPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.ListFollowing(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedPosts handles GET /api/posts/likes/:userId
// @Summary Posts a user liked
// @Tags feed
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/likes/{userId} [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	posts, err := s.feedService.ListLiked(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:username?type=post|review
// @Summary Posts by one author
// @Tags feed
// @Produce json
// @Param username path string true "Username"
// @Param type query string false "post or review"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/user/{username} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.ListByUsername(c.UserContext(), c.Params("username"), c.Query("type"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}
