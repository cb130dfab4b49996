package fiberhelpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing thing")

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(func(err error) (int, bool) {
			if errors.Is(err, errMissing) {
				return fiber.StatusNotFound, true
			}
			return 0, false
		}),
	})
	app.Use(NewRecover())
	app.Get("/missing", func(c *fiber.Ctx) error { return fmt.Errorf("lookup: %w", errMissing) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password in here") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("oops") })
	app.Post("/parse", func(c *fiber.Ctx) error {
		_, err := RequestParse[struct{ Code string }](c)
		return err
	})
	return app
}

func decode(t *testing.T, app *fiber.App, method, path, body string) (int, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestNewErrorHandler(t *testing.T) {
	app := newTestApp()

	status, body := decode(t, app, "GET", "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "404", body.Code)
	assert.Contains(t, body.Message, "missing thing")

	status, body = decode(t, app, "GET", "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, body.Message, "password")

	status, _ = decode(t, app, "GET", "/panic", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)

	status, _ = decode(t, app, "POST", "/parse", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = decode(t, app, "GET", "/nowhere", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
