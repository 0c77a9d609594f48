package server

import (
	"reelroom/internal/models"
	"reelroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body of POST /api/posts/create.
type CreatePostRequest struct {
	Text       string             `json:"text"`
	Img        string             `json:"img"`
	PostType   string             `json:"postType"`
	ReviewData *models.ReviewData `json:"reviewData"`
}

// CreatePost handles POST /api/posts/create
// @Summary Create a post or review
// @Description Plain posts need text or an image. Reviews need a movie name and a rating from 1 to 5.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     actorID(c),
		Text:       req.Text,
		Img:        req.Img,
		PostType:   req.PostType,
		ReviewData: req.ReviewData,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: actorID(c),
		PostID: postID,
	}); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// CommentOnPost handles POST /api/posts/:id/comment
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "Comment"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comment [post]
func (s *Server) CommentOnPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CommentOnPost(c.UserContext(), service.CommentInput{
		UserID: actorID(c),
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// LikeUnlikePost handles POST /api/posts/like/:id and answers with the
// post's like set after the toggle.
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} integer
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/like/{id} [post]
func (s *Server) LikeUnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.postService.ToggleLike(c.UserContext(), actorID(c), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	likes := res.Likes
	if likes == nil {
		likes = []uint{}
	}
	return c.JSON(likes)
}
