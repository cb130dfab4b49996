package fiberhelpers

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"stockwatch/utils/log"
)

func NewRecover() fiber.Handler {
	return recover.New(
		recover.Config{
			StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
				log.WithFields(map[string]any{
					"path":        c.Path(),
					"stack_trace": string(debug.Stack()),
				}).Error(fmt.Sprintf("panic: %v", e))
			},
			EnableStackTrace: true,
		},
	)
}
