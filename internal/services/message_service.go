package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"messaging-service/internal/attachments"
	"messaging-service/internal/models"
	"messaging-service/internal/render"
	"messaging-service/internal/repositories"
	"messaging-service/internal/ws"
)

const (
	editWindow        = 15 * time.Minute
	maxAttachmentSize = 10 << 20
	attachmentFolder  = "messages"
)

var allowedAttachmentMimes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// AttachmentUpload is a pending binary upload. Validation happens before the
// store is touched.
type AttachmentUpload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// SendInput is the request to send a message.
type SendInput struct {
	RecipientID int
	Content     string
	Type        string
	ReplyToID   *int
	Attachment  *AttachmentUpload
}

// NotificationCreator is the slice of the notification service the message
// flow needs.
type NotificationCreator interface {
	Create(ctx context.Context, input CreateNotificationInput) (models.NotificationView, error)
}

// RuleEvaluator runs the automatic badge rules after messaging activity.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, userID int) ([]models.Badge, error)
}

// Messages is the messaging core consumed by the HTTP layer.
type Messages interface {
	Send(ctx context.Context, senderID int, input SendInput) (models.MessageView, error)
	Edit(ctx context.Context, messageID int, requesterID int, content string) (models.MessageView, error)
	Delete(ctx context.Context, messageID int, requesterID int) error
	MarkConversationRead(ctx context.Context, conversationID string, readerID int) (int, error)
	History(ctx context.Context, conversationID string, requesterID int, page, pageSize int) ([]models.MessageView, error)
	Typing(ctx context.Context, conversationID string, senderID int, isTyping bool) error
}

// MessageService implements Messages on top of the repositories and the push
// gateway.
type MessageService struct {
	users   repositories.UserRepository
	convs   repositories.ConversationRepository
	msgs    repositories.MessageRepository
	notifs  NotificationCreator
	badges  RuleEvaluator
	pusher  Pusher
	store   attachments.Store
	log     *zap.SugaredLogger
	nowFunc func() time.Time
}

// NewMessageService builds a MessageService. badges may be nil when automatic
// awards are disabled.
func NewMessageService(
	users repositories.UserRepository,
	convs repositories.ConversationRepository,
	msgs repositories.MessageRepository,
	notifs NotificationCreator,
	badges RuleEvaluator,
	pusher Pusher,
	store attachments.Store,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		users:   users,
		convs:   convs,
		msgs:    msgs,
		notifs:  notifs,
		badges:  badges,
		pusher:  pusher,
		store:   store,
		log:     log,
		nowFunc: time.Now,
	}
}

// Send validates, persists and broadcasts a new message. The recipient must
// exist; attachments are validated before any write happens.
func (s *MessageService) Send(ctx context.Context, senderID int, input SendInput) (models.MessageView, error) {
	recipient, err := s.users.Get(ctx, input.RecipientID)
	if err != nil {
		return models.MessageView{}, err
	}

	msgType := input.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	msg := models.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Content:     input.Content,
		ReplyToID:   input.ReplyToID,
	}

	if input.Attachment != nil {
		if err := validateAttachment(input.Attachment); err != nil {
			return models.MessageView{}, err
		}
		// The attachment MIME category decides the type, whatever the caller said.
		msgType = models.MessageTypeFile
		if strings.HasPrefix(input.Attachment.MimeType, "image/") {
			msgType = models.MessageTypeImage
		}

		url, err := s.store.Save(ctx, attachmentFolder, input.Attachment.Filename, input.Attachment.Content)
		if err != nil {
			return models.MessageView{}, fmt.Errorf("store attachment: %w", err)
		}
		msg.AttachmentURL = &url
		msg.AttachmentName = &input.Attachment.Filename
		msg.AttachmentMime = &input.Attachment.MimeType
		msg.AttachmentSize = &input.Attachment.Size
	}
	msg.Type = msgType

	conv, err := s.convs.Resolve(ctx, senderID, recipient.ID)
	if err != nil {
		return models.MessageView{}, err
	}
	msg.ConversationID = conv.ID

	created, err := s.msgs.Create(ctx, msg)
	if err != nil {
		return models.MessageView{}, err
	}

	if err := s.convs.SetLastMessage(ctx, conv.ID, created.ID, created.SentAt); err != nil {
		s.log.Warnw("set last message failed", "conversation_id", conv.ID, "error", err)
	}
	if err := s.convs.SetUnreadFor(ctx, conv.ID, recipient.ID, true); err != nil {
		s.log.Warnw("set unread failed", "conversation_id", conv.ID, "error", err)
	}

	// Real-time delivery and the companion notification are best-effort; the
	// persisted message is never rolled back because of them.
	recipientView := s.view(ctx, created, recipient.ID)
	s.pusher.SendToUser(recipient.ID, models.Event{Type: ws.EventNewMessage, Payload: recipientView})
	s.pusher.SendToGroup(ws.ConversationGroup(conv.ID), models.Event{Type: ws.EventNewMessage, Payload: recipientView})

	if s.notifs != nil {
		sender, serr := s.users.Get(ctx, senderID)
		title := "Nuevo mensaje"
		if serr == nil {
			title = fmt.Sprintf("Nuevo mensaje de %s", sender.Name)
		}
		actionURL := "/mensajes/" + conv.ID
		if _, err := s.notifs.Create(ctx, CreateNotificationInput{
			RecipientID: recipient.ID,
			SenderID:    &senderID,
			Title:       title,
			Message:     previewContent(created),
			Type:        models.NotificationTypeMessageReceived,
			Priority:    models.PriorityNormal,
			ActionURL:   &actionURL,
		}); err != nil {
			s.log.Warnw("message notification failed", "recipient_id", recipient.ID, "error", err)
		}
	}

	if s.badges != nil {
		if _, err := s.badges.Evaluate(ctx, senderID); err != nil {
			s.log.Warnw("badge evaluation failed", "user_id", senderID, "error", err)
		}
	}

	return s.view(ctx, created, senderID), nil
}

// Edit updates a message's content. Sender-only, not after deletion, and only
// within the edit window.
func (s *MessageService) Edit(ctx context.Context, messageID int, requesterID int, content string) (models.MessageView, error) {
	msg, err := s.msgs.Get(ctx, messageID)
	if err != nil {
		return models.MessageView{}, err
	}
	if msg.SenderID != requesterID {
		return models.MessageView{}, ErrNotSender
	}
	if msg.IsDeleted {
		return models.MessageView{}, validationf("el mensaje fue eliminado")
	}
	now := s.nowFunc()
	if now.Sub(msg.SentAt) > editWindow {
		return models.MessageView{}, validationf("el mensaje solo puede editarse durante los 15 minutos posteriores al envío")
	}

	if err := s.msgs.UpdateContent(ctx, messageID, content, now); err != nil {
		return models.MessageView{}, err
	}
	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now

	view := s.view(ctx, msg, msg.RecipientID)
	s.pusher.SendToUser(msg.RecipientID, models.Event{Type: ws.EventMessageEdited, Payload: view})
	s.pusher.SendToGroup(ws.ConversationGroup(msg.ConversationID), models.Event{Type: ws.EventMessageEdited, Payload: view})

	return s.view(ctx, msg, requesterID), nil
}

// Delete soft-deletes a message. The row stays; the content becomes the fixed
// placeholder. Only the id travels in the push event.
func (s *MessageService) Delete(ctx context.Context, messageID int, requesterID int) error {
	msg, err := s.msgs.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return ErrNotSender
	}

	if err := s.msgs.SoftDelete(ctx, messageID, s.nowFunc()); err != nil {
		return err
	}

	payload := models.MessageDeletedPayload{ConversationID: msg.ConversationID, MessageID: messageID}
	s.pusher.SendToUser(msg.RecipientID, models.Event{Type: ws.EventMessageDeleted, Payload: payload})
	s.pusher.SendToGroup(ws.ConversationGroup(msg.ConversationID), models.Event{Type: ws.EventMessageDeleted, Payload: payload})
	return nil
}

// MarkConversationRead flips every unread message addressed to the reader,
// clears the reader's unread slot and pushes one receipt per message to its
// sender. Returns how many messages were marked.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID string, readerID int) (int, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(readerID) {
		return 0, ErrNotParticipant
	}

	marked, err := s.msgs.MarkConversationRead(ctx, conversationID, readerID, s.nowFunc())
	if err != nil {
		return 0, err
	}
	if err := s.convs.SetUnreadFor(ctx, conversationID, readerID, false); err != nil {
		s.log.Warnw("clear unread flag failed", "conversation_id", conversationID, "error", err)
	}

	for _, msg := range marked {
		s.pusher.SendToUser(msg.SenderID, models.Event{Type: ws.EventMessageRead, Payload: models.ReadReceiptPayload{
			ConversationID: conversationID,
			MessageID:      msg.ID,
			ReaderID:       readerID,
		}})
	}
	return len(marked), nil
}

// History returns the conversation's messages for a participant, oldest first.
func (s *MessageService) History(ctx context.Context, conversationID string, requesterID int, page, pageSize int) ([]models.MessageView, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	msgs, err := s.msgs.ListByConversation(ctx, conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	summaries, err := s.users.Summaries(ctx, []int{conv.User1ID, conv.User2ID})
	if err != nil {
		s.log.Warnw("load sender profiles failed", "conversation_id", conversationID, "error", err)
		summaries = map[int]models.UserSummary{}
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, msg := range msgs {
		view := s.view(ctx, msg, requesterID)
		if sender, ok := summaries[msg.SenderID]; ok {
			view.Sender = &sender
		}
		views = append(views, view)
	}
	return views, nil
}

// Typing forwards the transient typing indicator to the other participant.
func (s *MessageService) Typing(ctx context.Context, conversationID string, senderID int, isTyping bool) error {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(senderID) {
		return ErrNotParticipant
	}

	s.pusher.SendToUser(conv.OtherParticipant(senderID), models.Event{Type: ws.EventUserTyping, Payload: models.TypingPayload{
		ConversationID: conversationID,
		UserID:         senderID,
		IsTyping:       isTyping,
	}})
	return nil
}

// view maps a row to its API shape for the given viewer.
func (s *MessageService) view(ctx context.Context, msg models.Message, viewerID int) models.MessageView {
	view := models.MessageView{
		Message: msg,
		TimeAgo: render.TimeAgo(msg.SentAt, s.nowFunc()),
		IsMine:  msg.SenderID == viewerID,
	}

	if msg.IsDeleted {
		// Deleted messages hide their attachment and keep only the placeholder.
		view.Content = models.DeletedPlaceholder
		view.AttachmentURL = nil
		view.AttachmentName = nil
		view.AttachmentMime = nil
		view.AttachmentSize = nil
		return view
	}

	if msg.Type != models.MessageTypeSystem && msg.Type != models.MessageTypeApplicationUpdate {
		view.FormattedContent = render.FormatContent(msg.Content)
	}

	if msg.ReplyToID != nil {
		if replied, err := s.msgs.Get(ctx, *msg.ReplyToID); err == nil {
			content := replied.Content
			if replied.IsDeleted {
				content = models.DeletedPlaceholder
			}
			view.ReplyTo = &models.ReplyPreview{ID: replied.ID, SenderID: replied.SenderID, Content: content}
		}
	}
	return view
}

func validateAttachment(a *AttachmentUpload) error {
	if !allowedAttachmentMimes[a.MimeType] {
		return validationf(fmt.Sprintf("tipo de archivo no permitido: %s", a.MimeType))
	}
	if a.Size > maxAttachmentSize {
		return validationf("el archivo supera el tamaño máximo de 10 MB")
	}
	return nil
}

func previewContent(msg models.Message) string {
	switch msg.Type {
	case models.MessageTypeImage:
		return "Te envió una imagen"
	case models.MessageTypeFile:
		return "Te envió un archivo"
	}
	content := msg.Content
	if len(content) > 120 {
		content = content[:117] + "..."
	}
	return content
}
