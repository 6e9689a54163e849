package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	result, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	result, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}

// GetMe handles GET /api/auth/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	profile, err := s.authService.GetCurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profile)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response does
// not reveal whether the address is registered.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	if err := s.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return s.respondError(c, err)
	}
	return respondMessage(c, "If that email is registered, a reset link has been sent")
}

// ResetPassword handles PUT /api/auth/reset-password/:token
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	result, err := s.authService.ResetPassword(c.UserContext(), c.Params("token"), req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}

// ChangePassword handles PUT /api/auth/change-password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, errInvalidBody)
	}

	err := s.authService.ChangePassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondMessage(c, "Password updated")
}
