package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatorder-service/internal/models"
	"chatorder-service/internal/service"
	"chatorder-service/internal/transcribe"
)

// Replier delivers a text reply against a reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// ContentFetcher downloads uploaded message content from the platform.
type ContentFetcher interface {
	FetchContent(ctx context.Context, messageID string) ([]byte, error)
}

// AudioArchiver stores received voice messages; archival is best-effort.
type AudioArchiver interface {
	ArchiveAudio(ctx context.Context, name string, audio []byte) error
}

// Deduper claims webhook delivery ids so redeliveries are processed
// once.
type Deduper interface {
	ClaimDelivery(ctx context.Context, deliveryID string) bool
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type           string `json:"type"`
	WebhookEventID string `json:"webhookEventId"`
	ReplyToken     string `json:"replyToken"`
	Source         struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

type WebhookHandler struct {
	orders      service.OrderService
	transcriber transcribe.Transcriber
	replier     Replier
	content     ContentFetcher
	archiver    AudioArchiver
	dedupe      Deduper
	log         *zap.Logger
	now         func() time.Time
}

// NewWebhookHandler wires the inbound event boundary. dedupe may be nil
// when no cache is configured.
func NewWebhookHandler(orders service.OrderService, transcriber transcribe.Transcriber, replier Replier, content ContentFetcher, archiver AudioArchiver, dedupe Deduper, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		orders:      orders,
		transcriber: transcriber,
		replier:     replier,
		content:     content,
		archiver:    archiver,
		dedupe:      dedupe,
		log:         log,
		now:         time.Now,
	}
}

// Handle acknowledges the batch immediately and processes every event in
// its own goroutine. One event failing never touches the others.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	c.Status(http.StatusOK)

	for _, ev := range req.Events {
		if ev.Type != "message" {
			continue
		}
		go h.processEvent(ev)
	}
}

func (h *WebhookHandler) processEvent(ev webhookEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic while processing event", zap.Any("panic", r),
				zap.String("eventId", ev.WebhookEventID))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if h.dedupe != nil && ev.WebhookEventID != "" {
		if !h.dedupe.ClaimDelivery(ctx, ev.WebhookEventID) {
			h.log.Info("duplicate webhook delivery skipped", zap.String("eventId", ev.WebhookEventID))
			return
		}
	}

	switch ev.Message.Type {
	case "text":
		h.respond(ctx, ev.ReplyToken, h.orderReply(ctx, ev.Message.Text))
	case "audio":
		h.respond(ctx, ev.ReplyToken, h.audioReply(ctx, ev.Message.ID))
	default:
		h.log.Debug("unsupported message type", zap.String("type", ev.Message.Type))
	}
}

func (h *WebhookHandler) orderReply(ctx context.Context, text string) string {
	reply, err := h.orders.HandleUtterance(ctx, text)
	if err != nil {
		h.log.Error("order workflow failed", zap.String("text", text), zap.Error(err))
		return models.ReplyGenericError
	}
	return reply
}

func (h *WebhookHandler) audioReply(ctx context.Context, messageID string) string {
	audio, err := h.content.FetchContent(ctx, messageID)
	if err != nil {
		h.log.Error("audio content fetch failed", zap.String("messageId", messageID), zap.Error(err))
		return models.ReplyGenericError
	}

	if h.archiver != nil {
		if err := h.archiver.ArchiveAudio(ctx, h.audioName(), audio); err != nil {
			h.log.Warn("audio archival failed", zap.Error(err))
		}
	}

	text, err := h.transcriber.Transcribe(ctx, audio)
	if err != nil {
		h.log.Error("transcription failed", zap.String("messageId", messageID), zap.Error(err))
		return models.ReplyTranscribeFailed
	}
	if text == "" {
		return models.ReplyUnclearAudio
	}
	return h.orderReply(ctx, text)
}

func (h *WebhookHandler) respond(ctx context.Context, replyToken, text string) {
	if err := h.replier.Reply(ctx, replyToken, text); err != nil {
		h.log.Error("reply delivery failed", zap.Error(err))
	}
}

func (h *WebhookHandler) audioName() string {
	t := h.now()
	if loc, err := time.LoadLocation("Asia/Bangkok"); err == nil {
		t = t.In(loc)
	}
	return t.Format("20060102-150405") + ".m4a"
}
