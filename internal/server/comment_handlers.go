package server

import (
	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /api/posts/:id/comments and responds with every
// comment on the post, newest first.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	comments, err := s.postService.AddComment(c.UserContext(), postID, currentUserID(c), req.Text)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Status(fiber.StatusCreated)
	return respondList(c, comments)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comments, err := s.postService.DeleteComment(c.UserContext(), postID, commentID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respondList(c, comments)
}
