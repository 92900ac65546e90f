package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/queue"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

type published struct {
	topic string
	body  []byte
}

// recordingQueue keeps published messages instead of delivering them.
type recordingQueue struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	if q.err != nil {
		return q.err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, published{topic: topic, body: body})
	return nil
}

func (q *recordingQueue) Subscribe(topic string, handler queue.Handler) error {
	return nil
}

func newPostFixture() (*repository.MemoryStore, *recordingQueue, *service.PostService) {
	store := repository.NewMemoryStore()
	seedCharity(store, model.Charity{ID: "charity-1", CreatorID: "u1", Name: "A"})
	seedCampaign(store, "camp", "charity-1", "secret")
	q := &recordingQueue{}
	return store, q, &service.PostService{Store: store, Queue: q}
}

func TestCreatePostPublishesEvent(t *testing.T) {
	store, q, svc := newPostFixture()

	post, err := svc.CreatePost(context.Background(), "u1", "camp", "we did it", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Post(post.ID); !ok {
		t.Fatal("post not stored")
	}

	if len(q.msgs) != 1 || q.msgs[0].topic != queue.TopicPostCreated {
		t.Fatalf("unexpected messages %+v", q.msgs)
	}
	var ev service.PostCreated
	if err := json.Unmarshal(q.msgs[0].body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.PostID != post.ID || ev.CampaignID != "camp" || !ev.Finish {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestCreatePostRequiresCharityOwner(t *testing.T) {
	_, q, svc := newPostFixture()

	if _, err := svc.CreatePost(context.Background(), "u2", "camp", "hi", false); appErrors.KindOf(err) != appErrors.Forbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.CreatePost(context.Background(), "u1", "missing", "hi", false); !appErrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.CreatePost(context.Background(), "u1", "camp", " ", false); appErrors.KindOf(err) != appErrors.BadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if len(q.msgs) != 0 {
		t.Errorf("rejected posts must not publish, got %d", len(q.msgs))
	}
}

func TestCreatePostOnClosedCampaign(t *testing.T) {
	store, _, svc := newPostFixture()
	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	tx.CloseCampaign("camp")
	tx.Commit(ctx)

	if _, err := svc.CreatePost(ctx, "u1", "camp", "more", false); appErrors.KindOf(err) != appErrors.BadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCreatePostSurvivesPublishFailure(t *testing.T) {
	store, q, svc := newPostFixture()
	q.err = errors.New("broker down")

	post, err := svc.CreatePost(context.Background(), "u1", "camp", "hello", false)
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if _, ok := store.Post(post.ID); !ok {
		t.Error("post should still be stored")
	}
}

func TestCreateComment(t *testing.T) {
	_, q, svc := newPostFixture()
	ctx := context.Background()
	post, _ := svc.CreatePost(ctx, "u1", "camp", "hello", false)

	comment, err := svc.CreateComment(ctx, "u7", "camp", post.ID, "nice")
	if err != nil {
		t.Fatal(err)
	}
	if comment.AuthorID != "u7" || comment.PostID != post.ID {
		t.Errorf("unexpected comment %+v", comment)
	}
	if last := q.msgs[len(q.msgs)-1]; last.topic != queue.TopicCommentCreated {
		t.Errorf("expected comment event, got %s", last.topic)
	}

	if _, err := svc.CreateComment(ctx, "u7", "other", post.ID, "nice"); !appErrors.IsNotFound(err) {
		t.Errorf("comment on a post of another campaign should be not found, got %v", err)
	}
}
