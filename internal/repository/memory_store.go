package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
)

// MemoryStore keeps everything in process. A Tx holds the store lock from Begin until
// Commit or Rollback, so units of work are fully serialized.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

type notificationKey struct {
	campaignID  string
	operationID string
}

type memoryData struct {
	charities     map[string]model.Charity
	locations     map[string]model.CharityLocation
	campaigns     map[string]model.Campaign
	secrets       map[string]model.CampaignPaymentSecret
	notifications map[notificationKey]model.PaymentNotification
	posts         map[string]model.Post
	comments      map[string]model.Comment
	users         map[string]model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{
		charities:     map[string]model.Charity{},
		locations:     map[string]model.CharityLocation{},
		campaigns:     map[string]model.Campaign{},
		secrets:       map[string]model.CampaignPaymentSecret{},
		notifications: map[notificationKey]model.PaymentNotification{},
		posts:         map[string]model.Post{},
		comments:      map[string]model.Comment{},
		users:         map[string]model.User{},
	}}
}

type memoryTx struct {
	store *MemoryStore
	ops   []func(d *memoryData)
	done  bool
}

func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memoryTx{store: s}, nil
}

func (t *memoryTx) stage(op func(d *memoryData)) {
	t.ops = append(t.ops, op)
}

func (t *memoryTx) Staged() int {
	return len(t.ops)
}

func (t *memoryTx) Commit(ctx context.Context) error {
	if t.done {
		return appErrors.NewInternal("transaction already finished", nil)
	}
	t.done = true
	defer t.store.mu.Unlock()
	for _, op := range t.ops {
		op(t.store.data)
	}
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// ====================== Charities ======================

func (t *memoryTx) GetCharity(ctx context.Context, id string) (*model.Charity, error) {
	c, ok := t.store.data.charities[id]
	if !ok {
		return nil, appErrors.NewCharityNotFound(id)
	}
	out := copyCharity(c)
	return &out, nil
}

func (t *memoryTx) PutCharity(c model.Charity) {
	c = copyCharity(c)
	t.stage(func(d *memoryData) { d.charities[c.ID] = c })
}

func (t *memoryTx) DeleteCharity(id string) {
	t.stage(func(d *memoryData) { delete(d.charities, id) })
}

func (t *memoryTx) FindLocationsByCharity(ctx context.Context, charityID string) ([]model.CharityLocation, error) {
	return t.store.data.locationsOf(charityID), nil
}

func (t *memoryTx) InsertLocation(loc model.CharityLocation) {
	t.stage(func(d *memoryData) { d.locations[loc.ID] = loc })
}

func (t *memoryTx) UpdateLocation(loc model.CharityLocation) {
	t.stage(func(d *memoryData) {
		if existing, ok := d.locations[loc.ID]; ok {
			existing.Geohash = loc.Geohash
			existing.Point = loc.Point
			d.locations[loc.ID] = existing
		}
	})
}

func (t *memoryTx) DeleteLocation(id string) {
	t.stage(func(d *memoryData) { delete(d.locations, id) })
}

// ====================== Campaigns ======================

func (t *memoryTx) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	c, ok := t.store.data.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return &c, nil
}

func (t *memoryTx) FindCampaignByCreator(ctx context.Context, creatorID string) (*model.Campaign, error) {
	for _, c := range t.store.data.campaigns {
		if c.CreatorID == creatorID {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) GetCampaignStats(ctx context.Context, campaignID string) (model.CampaignStats, error) {
	var stats model.CampaignStats
	for _, p := range t.store.data.posts {
		if p.CampaignID == campaignID {
			stats.Posts++
		}
	}
	for _, c := range t.store.data.comments {
		if c.CampaignID == campaignID {
			stats.Comments++
		}
	}
	for k := range t.store.data.notifications {
		if k.campaignID == campaignID {
			stats.Notifications++
		}
	}
	return stats, nil
}

func (t *memoryTx) CreateCampaign(c model.Campaign) {
	t.stage(func(d *memoryData) { d.campaigns[c.ID] = c })
}

func (t *memoryTx) UpdateCampaignAccount(campaignID, yoomoney string) {
	t.updateCampaign(campaignID, func(c *model.Campaign) { c.Yoomoney = yoomoney })
}

func (t *memoryTx) CloseCampaign(campaignID string) {
	t.updateCampaign(campaignID, func(c *model.Campaign) { c.Closed = true })
}

func (t *memoryTx) ConfirmNotifications(campaignID string) {
	t.updateCampaign(campaignID, func(c *model.Campaign) { c.ConfirmedNotifications = true })
}

func (t *memoryTx) IncrementCollected(campaignID string, amount decimal.Decimal) {
	t.updateCampaign(campaignID, func(c *model.Campaign) { c.CollectedAmount = c.CollectedAmount.Add(amount) })
}

func (t *memoryTx) updateCampaign(id string, fn func(c *model.Campaign)) {
	t.stage(func(d *memoryData) {
		if c, ok := d.campaigns[id]; ok {
			fn(&c)
			d.campaigns[id] = c
		}
	})
}

func (t *memoryTx) GetPaymentSecret(ctx context.Context, campaignID string) (*model.CampaignPaymentSecret, error) {
	s, ok := t.store.data.secrets[campaignID]
	if !ok {
		return nil, appErrors.NewPaymentSecretNotFound(campaignID)
	}
	return &s, nil
}

func (t *memoryTx) PutPaymentSecret(s model.CampaignPaymentSecret) {
	t.stage(func(d *memoryData) { d.secrets[s.CampaignID] = s })
}

func (t *memoryTx) NotificationExists(ctx context.Context, campaignID, operationID string) (bool, error) {
	_, ok := t.store.data.notifications[notificationKey{campaignID, operationID}]
	return ok, nil
}

func (t *memoryTx) RecordNotification(n model.PaymentNotification) {
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now().UTC()
	}
	t.stage(func(d *memoryData) { d.notifications[notificationKey{n.CampaignID, n.OperationID}] = n })
}

// ====================== Posts, comments, users ======================

func (t *memoryTx) GetPost(ctx context.Context, campaignID, postID string) (*model.Post, error) {
	p, ok := t.store.data.posts[postID]
	if !ok || p.CampaignID != campaignID {
		return nil, appErrors.NewPostNotFound(postID)
	}
	return &p, nil
}

func (t *memoryTx) InsertPost(p model.Post) {
	t.stage(func(d *memoryData) { d.posts[p.ID] = p })
}

func (t *memoryTx) InsertComment(c model.Comment) {
	t.stage(func(d *memoryData) { d.comments[c.ID] = c })
}

func (t *memoryTx) IncrementCommentCount(campaignID, postID string) {
	t.stage(func(d *memoryData) {
		if p, ok := d.posts[postID]; ok && p.CampaignID == campaignID {
			p.CommentCount++
			d.posts[postID] = p
		}
	})
}

func (t *memoryTx) PutUser(u model.User) {
	t.stage(func(d *memoryData) { d.users[u.ID] = u })
}

var _ Tx = (*memoryTx)(nil)

// ====================== Inspection ======================

func (s *MemoryStore) Charity(id string) (model.Charity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.charities[id]
	return copyCharity(c), ok
}

// CharityIDs lists stored charity ids in sorted order.
func (s *MemoryStore) CharityIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data.charities))
	for id := range s.data.charities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) LocationsOf(charityID string) []model.CharityLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.locationsOf(charityID)
}

func (s *MemoryStore) Campaign(id string) (model.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.campaigns[id]
	return c, ok
}

func (s *MemoryStore) Post(id string) (model.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.posts[id]
	return p, ok
}

func (s *MemoryStore) User(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	return u, ok
}

func (d *memoryData) locationsOf(charityID string) []model.CharityLocation {
	out := []model.CharityLocation{}
	for _, l := range d.locations {
		if l.CharityID == charityID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyCharity(c model.Charity) model.Charity {
	if c.Location != nil {
		loc := *c.Location
		c.Location = &loc
	}
	c.Tags = copyStrings(c.Tags)
	c.Campaigns = copyStrings(c.Campaigns)
	return c
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
