package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// GetFeed handles GET /api/posts and GET /api/posts/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}
	page, err := s.feedService.GetFeed(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}

// GetExplore handles GET /api/posts/explore
func (s *Server) GetExplore(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}
	page, err := s.feedService.GetExplore(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), service.PostInput(req))
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), postID, currentUserID(c), service.PostInput(req))
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, currentUserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return respondMessage(c, "Post removed")
}

// ToggleLike handles PUT /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}
