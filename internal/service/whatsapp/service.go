package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/service/commands"
	client "github.com/rpmontada/equinos/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

const failureReply = "Não foi possível concluir agora. Tente novamente em instantes."

// ErrNoRecipient is returned when a message has neither a recipient nor a configured group.
var ErrNoRecipient = errors.New("no recipient for outbound message")

// MessagingService describes the operations the HTTP layer and the scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	NotifyGroup(ctx context.Context, message string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Every message is
// attempted; the first failure is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				s.logger.Debug("message status", zap.String("message_id", status.ID), zap.String("status", status.Status))
			}

			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrInvalidArguments):
		err = nil
	default:
		reply = models.Reply{Text: failureReply}
	}

	if sendErr := s.send(ctx, client.Message{To: msg.From, Body: reply.Text, Buttons: reply.Buttons}); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

// SendOutbound lets internal operators push quick notifications via HTTP.
// An empty recipient targets the configured group.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := req.To
	if to == "" {
		to = s.cfg.GroupID
	}
	if to == "" {
		return ErrNoRecipient
	}
	return s.send(ctx, client.Message{To: to, Body: req.Message})
}

// NotifyGroup posts message to the configured group.
func (s *MetaWhatsAppService) NotifyGroup(ctx context.Context, message string) error {
	return s.SendOutbound(ctx, models.OutboundMessageRequest{Message: message})
}

func (s *MetaWhatsAppService) send(ctx context.Context, msg client.Message) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.client.Send(ctxWithTimeout, msg)
	if err != nil {
		return err
	}
	s.logger.Debug("message sent", zap.String("to", msg.To), zap.String("message_id", id))
	return nil
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return strings.TrimSpace(msg.Text.Body)
	}
	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
		return msg.Interactive.ButtonReply.ID
	}
	return ""
}
