package repository

import (
	"context"
	"database/sql"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
)

func (t *sqlTx) GetPost(ctx context.Context, campaignID, postID string) (*model.Post, error) {
	query := t.forUpdate(`
        SELECT id, campaign_id, author_id, text, finish, comment_count, created_at
        FROM posts WHERE campaign_id=$1 AND id=$2`)
	var p model.Post
	err := t.queryRow(ctx, query, campaignID, postID).Scan(
		&p.ID, &p.CampaignID, &p.AuthorID, &p.Text, &p.Finish, &p.CommentCount, &p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewPostNotFound(postID)
		}
		return nil, err
	}
	return &p, nil
}

func (t *sqlTx) InsertPost(p model.Post) {
	t.stage(`
        INSERT INTO posts (id, campaign_id, author_id, text, finish, comment_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, p.ID, p.CampaignID, p.AuthorID, p.Text, p.Finish, p.CommentCount, p.CreatedAt)
}

func (t *sqlTx) InsertComment(c model.Comment) {
	t.stage(`
        INSERT INTO comments (id, campaign_id, post_id, author_id, text, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, c.ID, c.CampaignID, c.PostID, c.AuthorID, c.Text, c.CreatedAt)
}

func (t *sqlTx) IncrementCommentCount(campaignID, postID string) {
	t.stage(`UPDATE posts SET comment_count = comment_count + 1 WHERE campaign_id=$1 AND id=$2`, campaignID, postID)
}

func (t *sqlTx) PutUser(u model.User) {
	t.stage(`
        INSERT INTO users (id, email, name) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET email=excluded.email, name=excluded.name
    `, u.ID, u.Email, nullString(u.Name))
}

var _ Tx = (*sqlTx)(nil)
