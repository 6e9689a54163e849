package server

import (
	"context"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SuggestUsers handles GET /api/profiles/suggestions?limit=
func (s *Server) SuggestUsers(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", service.DefaultSuggestionLimit)
	if err != nil {
		return s.respondError(c, err)
	}

	users, err := s.profileService.SuggestUsers(c.UserContext(), currentUserID(c), limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondList(c, users)
}

// UpdateProfile handles PUT /api/profiles/me. Omitted fields are left as is.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Bio            *string `json:"bio"`
		ProfilePicture *string `json:"profilePicture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	profile, err := s.authService.UpdateProfile(c.UserContext(), currentUserID(c), service.UpdateProfileInput{
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profile)
}

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profile)
}

// ToggleFollow handles PUT /api/profiles/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.profileService.ToggleFollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"following": following, "user_id": targetID})
}

// GetUserPosts handles GET /api/profiles/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}

	page, err := s.feedService.GetUserPosts(c.UserContext(), userID, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}

// ListFollowers handles GET /api/profiles/:id/followers
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	return s.listEdges(c, s.profileService.ListFollowers)
}

// ListFollowing handles GET /api/profiles/:id/following
func (s *Server) ListFollowing(c *fiber.Ctx) error {
	return s.listEdges(c, s.profileService.ListFollowing)
}

func (s *Server) listEdges(
	c *fiber.Ctx,
	list func(ctx context.Context, userID uint, page models.PageRequest) (*service.Page[models.UserSummary], error),
) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}

	page, err := list(c.UserContext(), userID, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}
