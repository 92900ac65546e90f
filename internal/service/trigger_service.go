// internal/service/trigger_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/queue"
	"github.com/unclebandit/charity-backend/internal/repository"
)

// Trigger events, one per newly created document.
type PostCreated struct {
	CampaignID string `json:"campaignId"`
	PostID     string `json:"postId"`
	Finish     bool   `json:"finish"`
}

type CommentCreated struct {
	CampaignID string `json:"campaignId"`
	PostID     string `json:"postId"`
	CommentID  string `json:"commentId"`
}

// UserCreated is published by the identity provider bridge on signup.
type UserCreated struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// TriggerService applies the counter and status side effects of new documents.
type TriggerService struct {
	Store repository.Store
}

// OnPostCreated closes the campaign when the post is marked as finishing it.
func (s *TriggerService) OnPostCreated(ctx context.Context, ev PostCreated) error {
	if !ev.Finish {
		return nil
	}
	return s.apply(ctx, func(tx repository.Tx) error {
		campaign, err := tx.GetCampaign(ctx, ev.CampaignID)
		if err != nil {
			return err
		}
		if !campaign.Closed {
			tx.CloseCampaign(ev.CampaignID)
		}
		return nil
	})
}

func (s *TriggerService) OnCommentCreated(ctx context.Context, ev CommentCreated) error {
	return s.apply(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetPost(ctx, ev.CampaignID, ev.PostID); err != nil {
			return err
		}
		tx.IncrementCommentCount(ev.CampaignID, ev.PostID)
		return nil
	})
}

// OnUserCreated provisions the profile record; name is only set when known.
func (s *TriggerService) OnUserCreated(ctx context.Context, ev UserCreated) error {
	if ev.UID == "" {
		log.Warn().Msg("⚠️ user_created event without uid, dropping")
		return nil
	}
	return s.apply(ctx, func(tx repository.Tx) error {
		user := model.User{ID: ev.UID, Email: ev.Email}
		if ev.DisplayName != "" {
			name := ev.DisplayName
			user.Name = &name
		}
		tx.PutUser(user)
		return nil
	})
}

// apply runs fn in one unit of work. A missing target document is logged and
// swallowed; retrying would not make it appear.
func (s *TriggerService) apply(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if appErrors.IsNotFound(err) {
			log.Warn().Err(err).Msg("⚠️ trigger target not found, skipping")
			return nil
		}
		return err
	}
	return tx.Commit(ctx)
}

// Subscribe wires the trigger handlers to their topics.
func (s *TriggerService) Subscribe(q queue.Queue) error {
	subs := map[string]queue.Handler{
		queue.TopicPostCreated: func(body []byte) error {
			var ev PostCreated
			if err := json.Unmarshal(body, &ev); err != nil {
				log.Error().Err(err).Msg("invalid post_created payload")
				return nil
			}
			return s.OnPostCreated(context.Background(), ev)
		},
		queue.TopicCommentCreated: func(body []byte) error {
			var ev CommentCreated
			if err := json.Unmarshal(body, &ev); err != nil {
				log.Error().Err(err).Msg("invalid comment_created payload")
				return nil
			}
			return s.OnCommentCreated(context.Background(), ev)
		},
		queue.TopicUserCreated: func(body []byte) error {
			var ev UserCreated
			if err := json.Unmarshal(body, &ev); err != nil {
				log.Error().Err(err).Msg("invalid user_created payload")
				return nil
			}
			return s.OnUserCreated(context.Background(), ev)
		},
	}
	for topic, h := range subs {
		if err := q.Subscribe(topic, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}
