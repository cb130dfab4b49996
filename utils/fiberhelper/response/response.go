package response

import (
	"github.com/gofiber/fiber/v2"
)

type Ext struct {
	*fiber.Ctx
}

// Ok : 200 with a JSON body
func (ext Ext) Ok(data interface{}) error {
	return ext.Status(fiber.StatusOK).JSON(data)
}

// Created : 201 with a JSON body
func (ext Ext) Created(data interface{}) error {
	return ext.Status(fiber.StatusCreated).JSON(data)
}

func (ext Ext) NoContent() error {
	return ext.SendStatus(fiber.StatusNoContent)
}

// Bytes : raw payload with an explicit content type
func (ext Ext) Bytes(contentType string, body []byte) error {
	ext.Set(fiber.HeaderContentType, contentType)
	return ext.Status(fiber.StatusOK).Send(body)
}
