// internal/controller/post_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/charity-backend/internal/auth"
	"github.com/unclebandit/charity-backend/internal/handler"
	"github.com/unclebandit/charity-backend/internal/service"
)

type PostController struct {
	PostService *service.PostService
	Auth        auth.Verifier
}

// CreatePost handles POST /campaigns/{campaignID}/posts.
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	var body struct {
		Text   string `json:"text"`
		Finish bool   `json:"finish"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	post, err := c.PostService.CreatePost(r.Context(), subject, chi.URLParam(r, "campaignID"), body.Text, body.Finish)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, post)
}

// CreateComment handles POST /campaigns/{campaignID}/posts/{postID}/comments.
func (c *PostController) CreateComment(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	comment, err := c.PostService.CreateComment(r.Context(), subject, chi.URLParam(r, "campaignID"), chi.URLParam(r, "postID"), body.Text)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, comment)
}
