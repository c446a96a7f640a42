package event

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
)

type AddCommentCmd struct {
	EventID string
	UserID  string
	Text    string
	Rating  int
}

func (s *Service) AddComment(ctx context.Context, cmd AddCommentCmd) (domain.Comment, error) {
	c, err := domain.NewComment(cmd.UserID, cmd.Text, cmd.Rating)
	if err != nil {
		return domain.Comment{}, err
	}
	if strings.TrimSpace(cmd.EventID) == "" {
		return domain.Comment{}, domain.ErrValidationMeta("invalid event id", map[string]string{
			"event_id": "required",
		})
	}

	err = s.store.Update(ctx, s.coll, cmd.EventID, docstore.Record{
		fieldComments: docstore.Append(encodeComment(c)),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Comment{}, domain.ErrNotFound("event not found")
	}
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("event_id", cmd.EventID).Msg("add comment failed")
		return domain.Comment{}, storeErr("could not add comment", err)
	}

	metrics.CommentsAddedTotal.Inc()
	publish(ctx, s, RoutingKeyCommented, EventCommentedPayload{
		EventID: cmd.EventID,
		UserID:  c.UserID,
		Rating:  c.Rating,
	})
	return c, nil
}
