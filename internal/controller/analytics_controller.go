// internal/controller/analytics_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/charity-backend/internal/auth"
	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/handler"
	"github.com/unclebandit/charity-backend/internal/service"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	Auth             auth.Verifier
}

func (c *AnalyticsController) GetCharityAnalytics(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	charityID := r.URL.Query().Get("charity")
	if charityID == "" {
		handler.WriteError(w, r, appErrors.NewBadRequest("Missing charity parameter"))
		return
	}

	stats, err := c.AnalyticsService.CharityAnalytics(r.Context(), subject, charityID)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, stats)
}

func (c *AnalyticsController) GetCampaignAnalytics(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	campaignID := r.URL.Query().Get("campaign")
	if campaignID == "" {
		handler.WriteError(w, r, appErrors.NewBadRequest("Missing campaign parameter"))
		return
	}

	stats, err := c.AnalyticsService.CampaignAnalytics(r.Context(), subject, campaignID)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, stats)
}
