package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"stockwatch/utils/log"
)

// LogMiddleware : one access-log line per request, paths in skipPath are not logged
func LogMiddleware(skipPath ...string) fiber.Handler {
	customTags := map[string]logger.LogFunc{
		"requestBody": getRequestBody(),
	}

	return logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "${status} | ${latency} | ${method} | ${path} | Query: ${queryParams} | Body: ${requestBody}\n",
		Output:     log.Writer(),
		Next: func(c *fiber.Ctx) bool {
			for _, p := range skipPath {
				if c.Path() == p {
					return true
				}
			}
			return false
		},
		CustomTags: customTags,
	})
}

func getRequestBody() logger.LogFunc {
	return func(output logger.Buffer, c *fiber.Ctx, data *logger.Data, extraParam string) (int, error) {
		if !json.Valid(c.Body()) {
			return output.WriteString("")
		}
		body := strings.ReplaceAll(strings.TrimSpace(string(c.Body())), "\n", "")
		return output.WriteString(body)
	}
}
