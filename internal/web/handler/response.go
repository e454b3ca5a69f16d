package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ListData is the data of a paginated list response.
type ListData struct {
	List        interface{} `json:"list"`
	Total       int64       `json:"total"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
	Permissions interface{} `json:"permissions,omitempty"`
}

// OK writes a successful response with data.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data and a message.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Message writes a successful response with a message only.
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(Envelope{Success: true, Message: message})
}

// List writes a paginated list response.
func List(c *fiber.Ctx, list interface{}, total int64, page Page, permissions interface{}) error {
	return OK(c, ListData{
		List:        list,
		Total:       total,
		CurrentPage: page.Number,
		PageSize:    page.Size,
		Permissions: permissions,
	})
}

// Fail writes an error response with the given status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}

// BadRequest writes a 400 response.
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message)
}

// Forbidden writes a 403 response.
func Forbidden(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusForbidden, "没有权限")
}

// InternalError logs err and writes a 500 response.
func InternalError(c *fiber.Ctx, err error, message string) error {
	log.Error().Err(err).Str("path", c.Path()).Msg(message)
	return Fail(c, fiber.StatusInternalServerError, message)
}

// ValidationFailed writes a 400 response listing the failed fields.
func ValidationFailed(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest(c, "参数错误")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = fmt.Sprintf("failed on %s", fe.Tag())
	}

	return c.Status(fiber.StatusBadRequest).JSON(Envelope{Success: false, Message: "参数错误", Errors: fields})
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}
