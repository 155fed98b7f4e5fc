package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/middleware"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// withScope simulates the JWT and tenant middlewares by setting the locals
// handlers read their scope from.
func withScope(userID uint, role string, schoolID, yearID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		c.Locals(middleware.LocalUserRole, role)
		c.Locals(middleware.LocalSchoolID, schoolID)
		c.Locals(middleware.LocalAcademicYearID, yearID)
		return c.Next()
	}
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
