package fiberhelpers

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"stockwatch/utils/log"
)

var ErrRequestParse = errors.New("request body could not be parsed")

// RequestParse : decodes the body into T
func RequestParse[T any](ctx *fiber.Ctx) (T, error) {
	var destination T
	if err := ctx.BodyParser(&destination); err != nil {
		typeName := reflect.TypeOf(destination).Name()
		log.Warnf("parse %s: %v", typeName, err)
		return destination, fmt.Errorf("%w: %s", ErrRequestParse, typeName)
	}
	return destination, nil
}

// ListenWithGraceFullyShutdown : serves until SIGINT/SIGTERM, then shuts the app
// down and runs onShutdown in order
func ListenWithGraceFullyShutdown(app *fiber.App, port string, onShutdown ...func()) {
	if !strings.ContainsAny(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}

	c := make(chan os.Signal, 1)
	serverShutdown := make(chan bool)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.Shutdown()
		for _, fn := range onShutdown {
			fn()
		}
		serverShutdown <- true
	}()

	address := "0.0.0.0" + port
	log.Infof("Starting server on %s", address)
	if err := app.Listen(address); err != nil {
		log.Errorf("Server failed to start on %s: %v", address, err)
		return
	}
	<-serverShutdown
}
