package server

import (
	"strings"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/search/users and GET /api/profiles/search.
// The term is read from ?username= or ?q=.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}
	term := c.Query("username")
	if term == "" {
		term = c.Query("q")
	}

	page, err := s.searchService.SearchUsers(c.UserContext(), currentUserID(c), service.SearchUsersInput{
		Term:      term,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      req,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}

// SearchPosts handles GET /api/search/posts?keywords=&authorId=&hasMedia=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return s.respondError(c, err)
	}
	authorID, err := queryInt(c, "authorId", 0)
	if err != nil {
		return s.respondError(c, err)
	}
	if authorID < 0 {
		return s.respondError(c, models.NewFieldValidationError("authorId", "authorId must be a positive integer"))
	}

	page, err := s.searchService.SearchPosts(c.UserContext(), service.SearchPostsInput{
		Keywords:  c.Query("keywords"),
		AuthorID:  uint(authorID),
		HasMedia:  strings.EqualFold(c.Query("hasMedia"), "true"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      req,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondPage(c, page)
}

// TrendingTopics handles GET /api/search/trending
func (s *Server) TrendingTopics(c *fiber.Ctx) error {
	topics, err := s.searchService.TrendingTopics(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return respondList(c, topics)
}
