package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/observability"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// Announcement service sentinels.
var (
	ErrAnnouncementNotFound    = errors.New("announcement not found")
	ErrAnnouncementClassGroups = errors.New("one or more target class groups do not belong to this school")
	ErrAnnouncementEmptyBody   = errors.New("announcement body empty after sanitization")
)

// AnnouncementService covers the announcement feed and its management.
type AnnouncementService interface {
	ListVisible(ctx context.Context, scope Scope, query dto.AnnouncementListQuery) ([]dto.AnnouncementResponse, int64, int, error)
	Get(ctx context.Context, scope Scope, id uint) (dto.AnnouncementResponse, error)
	Create(ctx context.Context, scope Scope, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
	Update(ctx context.Context, scope Scope, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error)
	Delete(ctx context.Context, scope Scope, id uint) error
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	schools   repository.SchoolRepository
	students  repository.StudentRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository, schools repository.SchoolRepository, students repository.StudentRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) AnnouncementService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	policy.AllowAttrs("href", "title", "target").OnElements("a")
	return &announcementService{
		repo:      repo,
		schools:   schools,
		students:  students,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "announcement_service").Logger(),
		policy:    policy,
		now:       time.Now,
	}
}

type announcementPage struct {
	Items []dto.AnnouncementResponse `json:"items"`
	Total int64                      `json:"total"`
}

// ListVisible returns the announcements the viewer may see, pinned first,
// then by priority, then by recency. Visibility is evaluated against the
// current time on every call; nothing visibility-related is stored.
func (s *announcementService) ListVisible(ctx context.Context, scope Scope, query dto.AnnouncementListQuery) ([]dto.AnnouncementResponse, int64, int, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, 0, err
	}
	page := maxInt(query.Page, 1)

	cacheKey := ""
	if s.cache != nil {
		version := s.cacheVersion(ctx, scope.SchoolID)
		cacheKey = fmt.Sprintf("announcements:%d:v%s:%s:%s:%d", scope.SchoolID, version, scope.Role, query.Priority, page)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var result announcementPage
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				observability.AnnouncementCache().WithLabelValues("hit").Inc()
				return result.Items, result.Total, page, nil
			}
		}
		observability.AnnouncementCache().WithLabelValues("miss").Inc()
	}

	// The repository returns the whole school feed; the viewer predicate and
	// final ordering are applied here, then the page is cut.
	all, _, err := s.repo.List(ctx, scope.SchoolID, repository.AnnouncementFilter{Priority: query.Priority})
	if err != nil {
		return nil, 0, 0, err
	}

	var classGroupID uint
	if scope.Role == models.RoleStudent {
		if student, err := s.students.FindByUserID(ctx, scope.UserID); err == nil {
			classGroupID = student.ClassGroupID
		}
	}

	now := s.now()
	visible := make([]models.Announcement, 0, len(all))
	for _, announcement := range all {
		if !announcement.IsVisibleAt(now) {
			continue
		}
		if !audienceMatches(announcement, scope.Role, classGroupID) {
			continue
		}
		visible = append(visible, announcement)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsPinned != visible[j].IsPinned {
			return visible[i].IsPinned
		}
		ri, rj := models.PriorityRank(visible[i].Priority), models.PriorityRank(visible[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return publishTime(visible[i]).After(publishTime(visible[j]))
	})

	total := int64(len(visible))
	start := (page - 1) * AnnouncementPageSize
	if start > len(visible) {
		start = len(visible)
	}
	end := start + AnnouncementPageSize
	if end > len(visible) {
		end = len(visible)
	}
	items := dto.NewAnnouncementResponseSlice(visible[start:end])

	if cacheKey != "" {
		if payload, err := json.Marshal(announcementPage{Items: items, Total: total}); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache announcement feed")
			}
		}
	}
	return items, total, page, nil
}

func (s *announcementService) Get(ctx context.Context, scope Scope, id uint) (dto.AnnouncementResponse, error) {
	announcement, err := s.repo.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
	}

	if scope.Role == models.RoleStudent || scope.Role == models.RoleParent {
		var classGroupID uint
		if scope.Role == models.RoleStudent {
			if student, err := s.students.FindByUserID(ctx, scope.UserID); err == nil {
				classGroupID = student.ClassGroupID
			}
		}
		if !announcement.IsVisibleAt(s.now()) || !audienceMatches(announcement, scope.Role, classGroupID) {
			return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
		}
	}
	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Create(ctx context.Context, scope Scope, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	body := strings.TrimSpace(s.policy.Sanitize(payload.Body))
	if body == "" {
		return dto.AnnouncementResponse{}, ErrAnnouncementEmptyBody
	}

	audience := payload.Audience
	if audience == "" {
		audience = models.AudienceAll
	}
	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	groups, err := s.resolveTargetGroups(ctx, scope.SchoolID, audience, payload.ClassGroupIDs)
	if err != nil {
		return dto.AnnouncementResponse{}, err
	}

	author := scope.UserID
	announcement := models.Announcement{
		SchoolID:       scope.SchoolID,
		Title:          strings.TrimSpace(payload.Title),
		Body:           body,
		Priority:       priority,
		TargetAudience: audience,
		CreatedByID:    &author,
		IsPublished:    payload.IsPublished,
		PublishDate:    payload.PublishDate,
		ExpiryDate:     payload.ExpiryDate,
		IsPinned:       payload.IsPinned,
	}
	if announcement.IsPublished && announcement.PublishDate == nil {
		now := s.now()
		announcement.PublishDate = &now
	}

	if err := s.repo.Create(ctx, &announcement, groups); err != nil {
		return dto.AnnouncementResponse{}, err
	}
	announcement.TargetClassGroups = groups
	s.invalidate(ctx, scope.SchoolID)
	s.logger.Info().Uint("announcement_id", announcement.ID).Str("audience", audience).Msg("announcement created")
	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Update(ctx context.Context, scope Scope, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	announcement, err := s.repo.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
	}

	if payload.Title != nil {
		announcement.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Body != nil {
		body := strings.TrimSpace(s.policy.Sanitize(*payload.Body))
		if body == "" {
			return dto.AnnouncementResponse{}, ErrAnnouncementEmptyBody
		}
		announcement.Body = body
	}
	if payload.Priority != nil {
		announcement.Priority = *payload.Priority
	}
	if payload.Audience != nil {
		announcement.TargetAudience = *payload.Audience
	}
	if payload.IsPublished != nil {
		announcement.IsPublished = *payload.IsPublished
		if announcement.IsPublished && announcement.PublishDate == nil {
			now := s.now()
			announcement.PublishDate = &now
		}
	}
	if payload.PublishDate != nil {
		announcement.PublishDate = payload.PublishDate
	}
	if payload.ExpiryDate != nil {
		announcement.ExpiryDate = payload.ExpiryDate
	}
	if payload.IsPinned != nil {
		announcement.IsPinned = *payload.IsPinned
	}

	var groups []models.ClassGroup
	if payload.ClassGroupIDs != nil {
		groups, err = s.resolveTargetGroups(ctx, scope.SchoolID, announcement.TargetAudience, payload.ClassGroupIDs)
		if err != nil {
			return dto.AnnouncementResponse{}, err
		}
	}

	if err := s.repo.Update(ctx, &announcement, groups); err != nil {
		return dto.AnnouncementResponse{}, err
	}
	if groups != nil {
		announcement.TargetClassGroups = groups
	}
	s.invalidate(ctx, scope.SchoolID)
	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := s.repo.Delete(ctx, scope.SchoolID, id); err != nil {
		return ErrAnnouncementNotFound
	}
	s.invalidate(ctx, scope.SchoolID)
	return nil
}

func (s *announcementService) resolveTargetGroups(ctx context.Context, schoolID uint, audience string, ids []uint) ([]models.ClassGroup, error) {
	if audience != models.AudienceSpecificClasses {
		return nil, nil
	}
	groups, err := s.schools.ClassGroupsByIDs(ctx, schoolID, ids)
	if err != nil {
		return nil, err
	}
	if len(groups) != len(ids) || len(groups) == 0 {
		return nil, ErrAnnouncementClassGroups
	}
	return groups, nil
}

// cacheVersion reads the per-school feed version; every mutation bumps it so
// stale pages can never be served, even within the TTL.
func (s *announcementService) cacheVersion(ctx context.Context, schoolID uint) string {
	version, err := s.cache.Get(ctx, versionKey(schoolID)).Result()
	if err != nil || version == "" {
		return "0"
	}
	return version
}

func (s *announcementService) invalidate(ctx context.Context, schoolID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, versionKey(schoolID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to bump announcement cache version")
	}
}

func versionKey(schoolID uint) string {
	return fmt.Sprintf("announcements:%d:version", schoolID)
}

func publishTime(announcement models.Announcement) time.Time {
	if announcement.PublishDate != nil {
		return *announcement.PublishDate
	}
	return announcement.CreatedAt
}

// audienceMatches applies the role side of the visibility predicate. Admins
// and teachers see the whole feed; staff-targeted notices reach them too.
func audienceMatches(announcement models.Announcement, role string, classGroupID uint) bool {
	if role == models.RoleAdmin || role == models.RoleTeacher {
		return true
	}
	switch announcement.TargetAudience {
	case models.AudienceAll:
		return true
	case models.AudienceStudents:
		return role == models.RoleStudent
	case models.AudienceParents:
		return role == models.RoleParent
	case models.AudienceTeachers, models.AudienceStaff:
		return false
	case models.AudienceSpecificClasses:
		if role != models.RoleStudent || classGroupID == 0 {
			return false
		}
		for _, group := range announcement.TargetClassGroups {
			if group.ID == classGroupID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
