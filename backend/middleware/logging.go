package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LoggingMiddleware logs one line per request with method, path,
// status and latency.
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()
		latency := time.Since(start)
		ip := c.IP()

		statusColor, methodColor, resetColor := getStatusColor(status), getMethodColor(method), "\033[0m"

		logger.Printf("%s %s%s%s %s %s%d%s %s",
			ip,
			methodColor, method, resetColor,
			path,
			statusColor, status, resetColor,
			latency,
		)

		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m" // red
	case status >= 400:
		return "\033[33m" // yellow
	case status >= 300:
		return "\033[36m" // cyan
	case status >= 200:
		return "\033[32m" // green
	default:
		return "\033[37m" // white
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return "\033[34m" // blue
	case "POST":
		return "\033[33m" // yellow
	case "PUT":
		return "\033[36m" // cyan
	case "DELETE":
		return "\033[31m" // red
	case "PATCH":
		return "\033[32m" // green
	default:
		return "\033[37m" // white
	}
}
