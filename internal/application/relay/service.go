package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/events"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Service interface {
	CreateRoom(ctx context.Context) (RoomSummary, error)
	JoinRoom(ctx context.Context, code string) (JoinResult, error)
	GetRoom(ctx context.Context, roomID string) (RoomInfo, error)
	SendMessage(ctx context.Context, roomID, from, text, signGloss string) (domain.Message, error)
	GetMessages(ctx context.Context, roomID string) ([]domain.Message, error)
	Subscribe(ctx context.Context, roomID string, sub domain.Subscriber, lastEventID string) (*Subscription, error)
	Stats(ctx context.Context) (domain.RegistryStats, error)
}

type Config struct {
	Repository domain.RoomRepository
	Publisher  events.Publisher
	Metrics    *metrics.Metrics
	Logger     logging.Logger
	Tracer     trace.Tracer
}

type service struct {
	repository domain.RoomRepository
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     logging.Logger
	tracer     trace.Tracer
}

func NewService(cfg Config) Service {
	s := &service{
		repository: cfg.Repository,
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
	}

	if s.publisher == nil {
		s.publisher = events.NewNopPublisher()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("relay")
	}

	return s
}

func (s *service) CreateRoom(ctx context.Context) (RoomSummary, error) {
	ctx, span := s.tracer.Start(ctx, "relay.CreateRoom")
	defer span.End()

	room, err := s.repository.Create(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create room")
		return RoomSummary{}, fmt.Errorf("create room: %w", err)
	}

	span.SetAttributes(attribute.String("room.id", room.ID))
	s.metrics.RoomCreated()
	s.logger.Info(logging.Relay, logging.CreateRoom, "room created", map[logging.ExtraKey]any{
		logging.RoomID: room.ID,
	})

	if err := s.publisher.PublishRoomCreated(context.WithoutCancel(ctx), room); err != nil {
		s.logPublishFailure(room.ID, events.EventRoomCreated, err)
	}

	span.SetStatus(codes.Ok, "room created")
	return RoomSummary{
		RoomID:    room.ID,
		Code:      room.Code,
		CreatedAt: room.CreatedAt,
	}, nil
}

func (s *service) JoinRoom(ctx context.Context, code string) (JoinResult, error) {
	ctx, span := s.tracer.Start(ctx, "relay.JoinRoom")
	defer span.End()

	room, side, err := s.repository.Join(ctx, code)
	if err != nil {
		s.metrics.Join(joinResult(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "join failed")
		return JoinResult{}, err
	}

	span.SetAttributes(
		attribute.String("room.id", room.ID),
		attribute.String("room.side", side.String()),
	)
	s.metrics.Join(metrics.JoinOK)
	s.logger.Info(logging.Relay, logging.JoinRoom, "side claimed", map[logging.ExtraKey]any{
		logging.RoomID: room.ID,
		logging.Side:   side.String(),
	})

	if err := s.publisher.PublishRoomJoined(context.WithoutCancel(ctx), room, side); err != nil {
		s.logPublishFailure(room.ID, events.EventRoomJoined, err)
	}

	span.SetStatus(codes.Ok, "joined")
	return JoinResult{
		RoomID: room.ID,
		Code:   room.Code,
		Side:   side,
	}, nil
}

func (s *service) GetRoom(ctx context.Context, roomID string) (RoomInfo, error) {
	ctx, span := s.tracer.Start(ctx, "relay.GetRoom")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lookup failed")
		return RoomInfo{}, err
	}

	return RoomInfo{
		RoomID:          room.ID,
		Code:            room.Code,
		CreatedAt:       room.CreatedAt,
		Sides:           room.Sides(),
		MessageCount:    room.MessageCount(),
		SubscriberCount: room.SubscriberCount(),
	}, nil
}

// SendMessage validates before touching the room, so a rejected message
// leaves no trace.
func (s *service) SendMessage(ctx context.Context, roomID, from, text, signGloss string) (domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "relay.SendMessage")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	side, err := domain.ParseSide(from)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid side")
		return domain.Message{}, err
	}

	msg, err := domain.NewMessage(side, text, signGloss)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid message")
		return domain.Message{}, err
	}

	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lookup failed")
		return domain.Message{}, err
	}

	accepted, report := room.Append(msg)

	span.SetAttributes(
		attribute.String("message.id", accepted.ID),
		attribute.Int("delivery.delivered", report.Delivered),
		attribute.Int("delivery.dropped", report.Dropped),
	)
	s.metrics.MessageSent()
	s.metrics.DeliveryFailures(report.Dropped)

	if report.Dropped > 0 {
		s.logger.Debug(logging.Stream, logging.Delivery, "dropped failing subscribers", map[logging.ExtraKey]any{
			logging.RoomID:    roomID,
			logging.MessageID: accepted.ID,
			"dropped":         report.Dropped,
		})
	}

	if err := s.publisher.PublishMessageSent(context.WithoutCancel(ctx), roomID, accepted); err != nil {
		s.logPublishFailure(roomID, events.EventMessageSent, err)
	}

	span.SetStatus(codes.Ok, "message accepted")
	return accepted, nil
}

func (s *service) GetMessages(ctx context.Context, roomID string) ([]domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "relay.GetMessages")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lookup failed")
		return nil, err
	}

	msgs := room.Messages()
	span.SetAttributes(attribute.Int("messages.count", len(msgs)))
	return msgs, nil
}

// Subscribe registers sub on the room. A non-empty lastEventID must be a
// message id; messages accepted after it come back as the backlog.
func (s *service) Subscribe(ctx context.Context, roomID string, sub domain.Subscriber, lastEventID string) (*Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "relay.Subscribe")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	if lastEventID != "" {
		id, err := ulid.ParseStrict(lastEventID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid last event id")
			return nil, domain.ErrInvalidEvent
		}
		// Ids are compared as strings, so use the canonical upper-case form.
		lastEventID = id.String()
	}

	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lookup failed")
		return nil, err
	}

	backlog, unsubscribe := room.Subscribe(sub, lastEventID)

	s.logger.Debug(logging.Stream, logging.Subscribe, "subscriber registered", map[logging.ExtraKey]any{
		logging.RoomID: roomID,
		"backlog":      len(backlog),
	})

	var once sync.Once
	return &Subscription{
		RoomID:  room.ID,
		Backlog: backlog,
		Cancel: func() {
			once.Do(func() {
				unsubscribe()
				s.logger.Debug(logging.Stream, logging.Unsubscribe, "subscriber removed", map[logging.ExtraKey]any{
					logging.RoomID: roomID,
				})
			})
		},
	}, nil
}

func (s *service) Stats(ctx context.Context) (domain.RegistryStats, error) {
	ctx, span := s.tracer.Start(ctx, "relay.Stats")
	defer span.End()

	return s.repository.Stats(ctx)
}

func (s *service) logPublishFailure(roomID, event string, err error) {
	s.logger.Warn(logging.RabbitMQ, logging.Publish, "failed to publish lifecycle event", map[logging.ExtraKey]any{
		logging.RoomID:       roomID,
		logging.ErrorMessage: err.Error(),
		"event":              event,
	})
}

func joinResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return metrics.JoinNotFound
	case errors.Is(err, domain.ErrRoomFull):
		return metrics.JoinFull
	default:
		return metrics.JoinInvalid
	}
}
