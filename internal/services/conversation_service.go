package services

import (
	"context"

	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ConversationList is a paginated listing.
type ConversationList struct {
	Conversations []models.ConversationSummary `json:"conversations"`
	Total         int                          `json:"total"`
	Page          int                          `json:"page"`
	PageSize      int                          `json:"page_size"`
}

// PresenceReader is the slice of the presence service the listing needs.
type PresenceReader interface {
	Status(ctx context.Context, userID int) (models.PresenceView, error)
}

// Conversations exposes listing, stats and archival.
type Conversations interface {
	List(ctx context.Context, userID int, page, pageSize int) (ConversationList, error)
	Stats(ctx context.Context, userID int) (models.ConversationStats, error)
	Archive(ctx context.Context, conversationID string, userID int) error
}

// ConversationService implements Conversations.
type ConversationService struct {
	convs    repositories.ConversationRepository
	msgs     repositories.MessageRepository
	users    repositories.UserRepository
	presence PresenceReader
	log      *zap.SugaredLogger
}

// NewConversationService builds a ConversationService.
func NewConversationService(
	convs repositories.ConversationRepository,
	msgs repositories.MessageRepository,
	users repositories.UserRepository,
	presence PresenceReader,
	log *zap.SugaredLogger,
) *ConversationService {
	return &ConversationService{convs: convs, msgs: msgs, users: users, presence: presence, log: log}
}

// List returns the user's non-archived conversations, most recent first, each
// enriched with the other participant's profile, last message preview, unread
// count and live online status.
func (s *ConversationService) List(ctx context.Context, userID int, page, pageSize int) (ConversationList, error) {
	convs, err := s.convs.ListForUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return ConversationList{}, err
	}
	total, err := s.convs.CountForUser(ctx, userID)
	if err != nil {
		return ConversationList{}, err
	}

	otherIDs := make([]int, 0, len(convs))
	for _, conv := range convs {
		otherIDs = append(otherIDs, conv.OtherParticipant(userID))
	}
	summaries, err := s.users.Summaries(ctx, otherIDs)
	if err != nil {
		return ConversationList{}, err
	}

	entries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.OtherParticipant(userID)
		entry := models.ConversationSummary{
			ConversationID: conv.ID,
			Other:          summaries[otherID],
			LastActivityAt: conv.LastMessageAt,
		}

		unread, err := s.msgs.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			s.log.Warnw("unread count failed", "conversation_id", conv.ID, "error", err)
		}
		entry.UnreadCount = unread

		if conv.LastMessageID != nil {
			if last, err := s.msgs.Get(ctx, *conv.LastMessageID); err == nil {
				content := last.Content
				if last.IsDeleted {
					content = models.DeletedPlaceholder
				}
				entry.LastMessage = &models.MessageView{Message: last, IsMine: last.SenderID == userID}
				entry.LastMessage.Content = content
			}
		}

		if status, err := s.presence.Status(ctx, otherID); err == nil {
			entry.OtherOnline = status.IsOnline
			entry.OtherLastSeen = status.LastSeenText
		}

		entries = append(entries, entry)
	}

	return ConversationList{Conversations: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

// Stats aggregates the user's messaging activity.
func (s *ConversationService) Stats(ctx context.Context, userID int) (models.ConversationStats, error) {
	stats, err := s.convs.Stats(ctx, userID)
	if err != nil {
		return models.ConversationStats{}, err
	}
	unread, err := s.msgs.TotalUnreadForUser(ctx, userID)
	if err != nil {
		return models.ConversationStats{}, err
	}
	stats.UnreadMessages = unread

	last, err := s.msgs.LastActivity(ctx, userID)
	if err != nil {
		return models.ConversationStats{}, err
	}
	stats.LastActivityAt = last
	return stats, nil
}

// Archive hides a conversation from the requester's listing. Nothing is deleted.
func (s *ConversationService) Archive(ctx context.Context, conversationID string, userID int) error {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	return s.convs.Archive(ctx, conversationID)
}
