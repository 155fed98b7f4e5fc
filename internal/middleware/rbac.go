package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// Actions gated by the role capability table.
const (
	ActionManageExams         = "exams:manage"
	ActionEnterMarks          = "marks:enter"
	ActionViewAllResults      = "results:view_all"
	ActionManageAnnouncements = "announcements:manage"
	ActionManageStudents      = "students:manage"
	ActionManageFees          = "fees:manage"
	ActionRecordPayments      = "payments:record"
)

// capabilities maps each action to the roles allowed to perform it. Students
// and parents never appear on write actions; their read access is scoped per
// handler instead.
var capabilities = map[string][]string{
	ActionManageExams:         {models.RoleAdmin, models.RoleTeacher},
	ActionEnterMarks:          {models.RoleAdmin, models.RoleTeacher},
	ActionViewAllResults:      {models.RoleAdmin, models.RoleTeacher},
	ActionManageAnnouncements: {models.RoleAdmin, models.RoleTeacher},
	ActionManageStudents:      {models.RoleAdmin},
	ActionManageFees:          {models.RoleAdmin},
	ActionRecordPayments:      {models.RoleAdmin},
}

// Allowed reports whether the role may perform the action.
func Allowed(role, action string) bool {
	for _, candidate := range capabilities[action] {
		if candidate == role {
			return true
		}
	}
	return false
}

// RequireAction ensures the authenticated user holds a role permitted to
// perform the named action.
func RequireAction(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals(LocalUserRole))
		if !Allowed(role, action) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals(LocalUserRole))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
