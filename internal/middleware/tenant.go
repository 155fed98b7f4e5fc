package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/repository"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// Locals keys populated by the tenant resolver.
const (
	LocalAcademicYearID = "academic_year_id"
)

// TenantResolver binds every request to exactly one school. The school comes
// from the token's school_id claim; superusers without one may select a
// tenant through the X-School-ID subdomain header. Requests that cannot be
// bound to an active school are rejected, so handlers below this middleware
// can rely on the school and active academic year locals being set.
func TenantResolver(schools repository.SchoolRepository, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		schoolID, hasSchool := c.Locals(LocalSchoolID).(uint)
		if !hasSchool || schoolID == 0 {
			subdomain := c.Get("X-School-ID")
			if subdomain == "" {
				return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
			}
			school, err := schools.FindBySubdomain(ctx, subdomain)
			if err != nil {
				return utils.SendError(c, fiber.StatusNotFound, "school not found")
			}
			schoolID = school.ID
			c.Locals(LocalSchoolID, schoolID)
		} else {
			school, err := schools.FindByID(ctx, schoolID)
			if err != nil || !school.IsActive {
				logger.Warn().Uint("school_id", schoolID).Msg("request bound to unknown or inactive school")
				return utils.SendError(c, fiber.StatusNotFound, "school not found")
			}
		}

		year, err := schools.ActiveAcademicYear(ctx, schoolID)
		if err != nil {
			return utils.SendError(c, fiber.StatusConflict, "school has no active academic year")
		}
		c.Locals(LocalAcademicYearID, year.ID)

		return c.Next()
	}
}
