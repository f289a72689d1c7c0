package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Response is the JSON envelope every endpoint answers with. Failures leave
// Message empty and carry the human readable reason in Error.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func send(c *fiber.Ctx, status int, body Response) error {
	return c.Status(status).JSON(body)
}

// Success sends a 200 with data
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a 201 with the new resource
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Error sends a failure with the given status. An empty reason falls back
// to the status text so clients always have something to show.
func Error(c *fiber.Ctx, statusCode int, reason string) error {
	if reason == "" {
		reason = utils.StatusMessage(statusCode)
	}
	return send(c, statusCode, Response{Error: reason})
}

func BadRequest(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusBadRequest, reason)
}

func Unauthorized(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusUnauthorized, reason)
}

func Forbidden(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusForbidden, reason)
}

func NotFound(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusNotFound, reason)
}

func Conflict(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusConflict, reason)
}

// TooManyRequests is what the rate limiters answer once a window is spent
func TooManyRequests(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusTooManyRequests, reason)
}

func InternalServerError(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusInternalServerError, reason)
}
