package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/middleware"
	"github.com/scholaris-io/scholaris-api/internal/service"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}

func localUint(c *fiber.Ctx, key string) uint {
	if value := c.Locals(key); value != nil {
		if id, ok := value.(uint); ok {
			return id
		}
	}
	return 0
}

func localString(c *fiber.Ctx, key string) string {
	if value := c.Locals(key); value != nil {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}

// scopeFromContext assembles the tenant and viewer scope from the locals set
// by the JWT and tenant middlewares.
func scopeFromContext(c *fiber.Ctx) service.Scope {
	return service.Scope{
		SchoolID:       localUint(c, middleware.LocalSchoolID),
		AcademicYearID: localUint(c, middleware.LocalAcademicYearID),
		UserID:         localUint(c, middleware.LocalUserID),
		Role:           localString(c, middleware.LocalUserRole),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
