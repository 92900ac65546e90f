// internal/service/post_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/queue"
	"github.com/unclebandit/charity-backend/internal/repository"
)

type PostService struct {
	Store repository.Store
	Queue queue.Queue
}

// CreatePost stores a campaign post written by the owning charity's creator and
// announces it, so the trigger can close the campaign when the post finishes it.
func (s *PostService) CreatePost(ctx context.Context, subject, campaignID, text string, finish bool) (*model.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.NewBadRequest("Bad request")
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	campaign, err := tx.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := requireCharityOwner(ctx, tx, campaign.CreatorID, subject); err != nil {
		return nil, err
	}
	if campaign.Closed {
		return nil, appErrors.NewBadRequest("Campaign is closed")
	}

	post := model.Post{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		AuthorID:   subject,
		Text:       text,
		Finish:     finish,
		CreatedAt:  time.Now().UTC(),
	}
	tx.InsertPost(post)
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(queue.TopicPostCreated, PostCreated{CampaignID: campaignID, PostID: post.ID, Finish: finish})
	return &post, nil
}

// CreateComment stores a comment on a post; the trigger bumps the post's counter.
func (s *PostService) CreateComment(ctx context.Context, subject, campaignID, postID, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.NewBadRequest("Bad request")
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.GetPost(ctx, campaignID, postID); err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		PostID:     postID,
		AuthorID:   subject,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	tx.InsertComment(comment)
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(queue.TopicCommentCreated, CommentCreated{CampaignID: campaignID, PostID: postID, CommentID: comment.ID})
	return &comment, nil
}

// publish logs instead of failing: the document is already committed.
func (s *PostService) publish(topic string, event any) {
	if err := s.Queue.Publish(topic, event); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("⚠️ failed to publish trigger event")
	}
}
