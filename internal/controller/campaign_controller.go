// internal/controller/campaign_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/charity-backend/internal/auth"
	"github.com/unclebandit/charity-backend/internal/handler"
	"github.com/unclebandit/charity-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Auth            auth.Verifier
}

// CreateCampaignAndPayment handles POST /createCampaignAndPayment.
func (c *CampaignController) CreateCampaignAndPayment(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Subject(r, c.Auth); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	var body service.CampaignInput
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	campaignID, err := c.CampaignService.CreateCampaignAndPayment(r.Context(), body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{"campaignId": campaignID})
}
