// internal/model/post.go
package model

import "time"

type Post struct {
	ID           string    `db:"id" json:"id"`
	CampaignID   string    `db:"campaign_id" json:"campaignid"`
	AuthorID     string    `db:"author_id" json:"authorid"`
	Text         string    `db:"text" json:"text"`
	Finish       bool      `db:"finish" json:"finish"`
	CommentCount int       `db:"comment_count" json:"commentcount"`
	CreatedAt    time.Time `db:"created_at" json:"createdat"`
}

type Comment struct {
	ID         string    `db:"id" json:"id"`
	CampaignID string    `db:"campaign_id" json:"campaignid"`
	PostID     string    `db:"post_id" json:"postid"`
	AuthorID   string    `db:"author_id" json:"authorid"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"createdat"`
}
