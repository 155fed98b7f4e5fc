package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/observability"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

const notificationBufferSize = 16

// ErrNotificationNotFound is returned for unknown notifications and for
// notifications belonging to another recipient alike.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists notifications and streams them to connected
// recipients via SSE, fanning events out across nodes through Redis and NATS.
type NotificationService interface {
	Publish(ctx context.Context, notification models.Notification) (dto.NotificationResponse, error)
	PublishBatch(ctx context.Context, notifications []models.Notification) error
	List(ctx context.Context, scope Scope, query dto.NotificationListQuery) ([]dto.NotificationResponse, int64, int, error)
	MarkRead(ctx context.Context, scope Scope, id uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, scope Scope) (int64, error)
	Delete(ctx context.Context, scope Scope, id uint) error
	UnreadCount(ctx context.Context, scope Scope) (int64, error)
	Subscribe(recipientID uint) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	broker      *notificationBroker
	nodeID      string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	RecipientID  uint                     `json:"recipient_id"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

type notificationBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.NotificationResponse]struct{}
}

// NewNotificationService constructs the notification service. channelBase
// names the cross-node fan-out channel; empty disables Redis and NATS fan-out.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/scholaris-io/scholaris-api/internal/service/notification"),
		broker: &notificationBroker{
			subscribers: make(map[uint]map[chan dto.NotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Publish stores a notification and pushes it to the recipient's live
// streams. Called by other services as a side effect of their own writes;
// the notification row itself is immutable except for its read state.
func (s *notificationService) Publish(ctx context.Context, notification models.Notification) (dto.NotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.Int("notification.recipient_id", int(notification.RecipientID)),
		attribute.String("notification.type", notification.Type),
	))
	defer span.End()

	if err := s.repo.Create(spanCtx, &notification); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(notification)
	s.broker.broadcast(notification.RecipientID, response)
	if err := s.fanOut(spanCtx, notification.RecipientID, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to fan out notification")
	}

	observability.NotificationsPublished().WithLabelValues(notification.Type).Inc()
	return response, nil
}

// PublishBatch stores many notifications in one write. Live fan-out is
// per-recipient as with Publish.
func (s *notificationService) PublishBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}
	for _, notification := range notifications {
		response := dto.NewNotificationResponse(notification)
		s.broker.broadcast(notification.RecipientID, response)
		if err := s.fanOut(ctx, notification.RecipientID, response); err != nil {
			s.logger.Warn().Err(err).Msg("failed to fan out notification")
		}
		observability.NotificationsPublished().WithLabelValues(notification.Type).Inc()
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, scope Scope, query dto.NotificationListQuery) ([]dto.NotificationResponse, int64, int, error) {
	page := maxInt(query.Page, 1)
	notifications, total, err := s.repo.ListByRecipient(ctx, scope.UserID, repository.NotificationFilter{
		UnreadOnly: query.UnreadOnly,
		Type:       query.Type,
		Page:       page,
		PageSize:   NotificationPageSize,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return dto.NewNotificationResponseSlice(notifications), total, page, nil
}

func (s *notificationService) MarkRead(ctx context.Context, scope Scope, id uint) (dto.NotificationResponse, error) {
	if err := s.repo.MarkRead(ctx, scope.UserID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}
	notification, err := s.repo.FindByID(ctx, scope.UserID, id)
	if err != nil {
		return dto.NotificationResponse{}, ErrNotificationNotFound
	}
	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, scope Scope) (int64, error) {
	return s.repo.MarkAllRead(ctx, scope.UserID)
}

func (s *notificationService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := s.repo.Delete(ctx, scope.UserID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, scope Scope) (int64, error) {
	return s.repo.UnreadCount(ctx, scope.UserID)
}

func (s *notificationService) Subscribe(recipientID uint) (<-chan dto.NotificationResponse, func()) {
	channel := make(chan dto.NotificationResponse, notificationBufferSize)

	s.broker.subscribe(recipientID, channel)
	observability.NotificationStreamClients().Inc()

	cleanup := func() {
		s.broker.unsubscribe(recipientID, channel)
		observability.NotificationStreamClients().Dec()
	}

	return channel, cleanup
}

func (s *notificationService) fanOut(ctx context.Context, recipientID uint, notification dto.NotificationResponse) error {
	event := notificationEvent{
		Source:       s.nodeID,
		RecipientID:  recipientID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "scholaris-notifications", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

func (s *notificationService) handleEvent(payload []byte) {
	var event notificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}
	s.broker.broadcast(event.RecipientID, event.Notification)
}

func (b *notificationBroker) subscribe(recipientID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[recipientID]; !exists {
		b.subscribers[recipientID] = make(map[chan dto.NotificationResponse]struct{})
	}
	b.subscribers[recipientID][ch] = struct{}{}
}

func (b *notificationBroker) unsubscribe(recipientID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[recipientID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, recipientID)
		}
	}
}

func (b *notificationBroker) broadcast(recipientID uint, notification dto.NotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[recipientID] {
		select {
		case ch <- notification:
		default:
		}
	}
}
