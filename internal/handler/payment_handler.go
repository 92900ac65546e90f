// internal/handler/payment_handler.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/payment"
	"github.com/unclebandit/charity-backend/internal/service"
)

// PaymentHandler receives payment provider notifications. It carries no bearer auth;
// notifications are authenticated by their signature.
type PaymentHandler struct {
	Service *service.CampaignService
}

func NewPaymentHandler(svc *service.CampaignService) *PaymentHandler {
	return &PaymentHandler{Service: svc}
}

// UpdatePaymentHandler handles POST /updatePayment/{campaignID}.
func (h *PaymentHandler) UpdatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	if campaignID == "" {
		WriteError(w, r, appErrors.NewBadRequest("Bad request"))
		return
	}

	n, err := payment.Decode(r)
	if err != nil {
		WriteError(w, r, &appErrors.Error{Kind: appErrors.BadRequest, Message: "Bad request", Err: err})
		return
	}

	log.Debug().Str("campaign_id", campaignID).Str("operation_id", n.OperationID).Bool("test", n.IsTest()).Msg("📥 payment notification received")

	res, err := h.Service.ApplyNotification(r.Context(), campaignID, n)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	body := map[string]any{"message": "Payment processed"}
	if res.Duplicate {
		body["duplicate"] = true
	}
	WriteJSON(w, http.StatusOK, body)
}
