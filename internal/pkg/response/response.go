package response

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the JSON envelope for successful operational endpoints.
type SuccessBody struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the JSON envelope for failed operational endpoints.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Success sends 200 with the success envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(SuccessBody{Status: "success", Message: message, Data: data})
}

// Error sends statusCode with the error envelope.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Status: "error",
		Error:  ErrorDetail{Message: message, StatusCode: statusCode},
	})
}
