package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"sayit/domain"
	"sayit/errors"
	"sayit/moderation"
	"sayit/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IBoardService interface {
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	GetMessages(ctx context.Context) ([]domain.Message, error)
	SearchMessages(ctx context.Context, cmd domain.SearchMessagesCommand) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error
}

const (
	contentRejected   = "Your message contains inappropriate content"
	recipientRejected = "The 'To' field contains inappropriate content"
)

type BoardService struct {
	classifier        moderation.Classifier
	repository        repositories.IMessageRepository
	index             repositories.IMessageIndex
	log               *slog.Logger
	feedLimit         int
	moderateRecipient bool
	now               func() time.Time
}

type BoardOption func(*BoardService)

func WithFeedLimit(limit int) BoardOption {
	return func(s *BoardService) {
		if limit > 0 {
			s.feedLimit = limit
		}
	}
}

// WithRecipientModeration toggles the second classification on the recipient field.
func WithRecipientModeration(enabled bool) BoardOption {
	return func(s *BoardService) { s.moderateRecipient = enabled }
}

func WithClock(now func() time.Time) BoardOption {
	return func(s *BoardService) { s.now = now }
}

// NewBoardService wires the write and read paths. index may be nil, in which case
// search is unavailable and writes skip indexing.
func NewBoardService(
	classifier moderation.Classifier,
	repository repositories.IMessageRepository,
	index repositories.IMessageIndex,
	log *slog.Logger,
	opts ...BoardOption,
) *BoardService {
	s := &BoardService{
		classifier:        classifier,
		repository:        repository,
		index:             index,
		log:               log,
		feedLimit:         domain.DefaultFeedLimit,
		moderateRecipient: true,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostMessage runs validation, then classification, then persistence.
// Nothing is stored unless every step accepts the submission.
func (s *BoardService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	submission, err := domain.NewSubmission(cmd.Content, cmd.Recipient)
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.screen(ctx, "content", submission.Content, contentRejected); err != nil {
		return domain.Message{}, err
	}
	if s.moderateRecipient {
		if err := s.screen(ctx, "recipient", submission.Recipient, recipientRejected); err != nil {
			return domain.Message{}, err
		}
	}

	message := domain.Message{
		ID:        uuid.New(),
		Content:   submission.Content,
		Recipient: submission.Recipient,
		CardColor: domain.RandomCardColor(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repository.StoreMessage(ctx, message); err != nil {
		return domain.Message{}, err
	}

	if s.index != nil {
		if err := s.index.Index(message); err != nil {
			s.log.Warn("Message stored but not indexed", "id", message.ID, "error", err)
		}
	}
	s.log.Debug("Message posted", "id", message.ID, "color", message.CardColor)
	return message, nil
}

func (s *BoardService) screen(ctx context.Context, field, text, rejection string) error {
	verdict := s.classifier.Classify(ctx, text)
	switch verdict.Status {
	case moderation.StatusFlagged:
		s.log.Info("Submission rejected by moderation", "field", field, "reason", verdict.Reason)
		return &errors.ModerationRejection{
			Field:        field,
			Reason:       verdict.Reason,
			CleanVersion: verdict.CleanText,
			Message:      rejection,
		}
	case moderation.StatusUnavailable:
		s.log.Warn("Moderation unavailable, allowing submission", "field", field, "reason", verdict.Reason)
	}
	return nil
}

func (s *BoardService) GetMessages(ctx context.Context) ([]domain.Message, error) {
	messages, err := s.repository.GetLatestMessages(ctx, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return lo.Ternary(messages == nil, []domain.Message{}, messages), nil
}

// SearchMessages resolves index hits through the repository and returns them newest first.
// Hits whose message no longer exists are skipped.
func (s *BoardService) SearchMessages(ctx context.Context, cmd domain.SearchMessagesCommand) ([]domain.Message, error) {
	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return nil, errors.ErrEmptyQuery
	}
	if s.index == nil {
		return nil, fmt.Errorf("%w: search index is not configured", errors.ErrStore)
	}
	limit := s.feedLimit
	if cmd.Limit > 0 && cmd.Limit < limit {
		limit = cmd.Limit
	}

	ids, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.repository.GetMessage(ctx, id)
		switch {
		case err == nil:
			messages = append(messages, message)
		case stderrors.Is(err, errors.ErrMessageNotFound):
			s.log.Debug("Index hit without message", "id", id)
		default:
			return nil, err
		}
	}
	slices.SortStableFunc(messages, func(a, b domain.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return messages, nil
}

// DeleteMessage removes a message; an unparsable id is reported as not found.
func (s *BoardService) DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	id, ok := cmd.ParseID()
	if !ok {
		return errors.ErrMessageNotFound
	}
	if err := s.repository.DeleteMessage(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Delete(id); err != nil {
			s.log.Warn("Message deleted but still indexed", "id", id, "error", err)
		}
	}
	s.log.Info("Message deleted", "id", id)
	return nil
}
