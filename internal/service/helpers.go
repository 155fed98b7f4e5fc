package service

// Page sizes per list surface. Handlers use these to build pagination
// metadata; clients cannot override them.
const (
	AnnouncementPageSize = 20
	MessagePageSize      = 20
	ExamPageSize         = 20
	StudentPageSize      = 20
	NotificationPageSize = 30
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
