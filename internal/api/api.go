package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"user-service/internal/apperrors"
	"user-service/internal/entity"
	"user-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers lists all users, newest first --> GET /users
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": fmt.Sprintf("failed to fetch users: %v", err)})
	}
	return c.JSON(200, users)
}

// GetUserByID retrieves a user by ID --> GET /users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	// any lookup failure is reported as a missing user
	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return notFound(c)
	}
	return c.JSON(200, user)
}

// CreateUser creates a new user --> POST /users
func (h *UserHandler) CreateUser(c echo.Context) error {
	form := entity.UserForm{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := service.ValidateForm(form); err != nil {
		return badRequest(c, err)
	}

	user, err := h.userService.CreateUser(c.Request().Context(), form)
	if err != nil {
		return c.JSON(500, map[string]string{"error": fmt.Sprintf("failed to create user: %v", err)})
	}
	return c.JSON(200, user)
}

// UpdateUser replaces email and phone of a user --> PUT /users/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	form := entity.UserForm{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := service.ValidateForm(form); err != nil {
		return badRequest(c, err)
	}

	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, form)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return notFound(c)
		}
		return c.JSON(500, map[string]string{"error": fmt.Sprintf("failed to update user: %v", err)})
	}
	return c.JSON(200, user)
}

// DeleteUser removes a user and returns its last state --> DELETE /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	user, err := h.userService.DeleteUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return notFound(c)
		}
		return c.JSON(500, map[string]string{"error": fmt.Sprintf("failed to delete user: %v", err)})
	}
	return c.JSON(200, user)
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func notFound(c echo.Context) error {
	return c.JSON(404, map[string]string{"error": fmt.Sprintf("User %s does not exist", c.Param("id"))})
}

func badRequest(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrMissingEmail):
		return c.JSON(400, map[string]string{"error": "Missing user email"})
	case errors.Is(err, apperrors.ErrMissingPhone):
		return c.JSON(400, map[string]string{"error": "Missing user phone"})
	default:
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
}
