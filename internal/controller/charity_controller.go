// internal/controller/charity_controller.go
package controller

import (
	"net/http"
	"strings"

	"github.com/unclebandit/charity-backend/internal/auth"
	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/handler"
	"github.com/unclebandit/charity-backend/internal/service"
)

type CharityController struct {
	CharityService *service.CharityService
	Auth           auth.Verifier
}

type charityBody struct {
	Charity *service.CharityInput `json:"charity"`
}

func (c *CharityController) decodeCharity(r *http.Request) (service.CharityInput, error) {
	var body charityBody
	if err := handler.DecodeJSON(r, &body); err != nil {
		return service.CharityInput{}, err
	}
	if body.Charity == nil {
		return service.CharityInput{}, appErrors.NewBadRequest("Bad request")
	}
	return *body.Charity, nil
}

// CreateCharity handles POST /createCharity. Any authenticated user may create one.
func (c *CharityController) CreateCharity(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Subject(r, c.Auth); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	in, err := c.decodeCharity(r)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	id, err := c.CharityService.Create(r.Context(), in)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{
		"message":   "Charity created successfully",
		"charityId": id,
	})
}

// UpdateCharity handles POST /updateCharity with the full charity record.
func (c *CharityController) UpdateCharity(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	in, err := c.decodeCharity(r)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	id, err := c.CharityService.Update(r.Context(), subject, in)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{
		"message":   "Charity edited successfully",
		"charityId": id,
	})
}

// DeleteCharity handles DELETE /deleteCharity with {"charityId": ...}.
func (c *CharityController) DeleteCharity(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.Subject(r, c.Auth)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	var body struct {
		CharityID string `json:"charityId"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}
	if strings.TrimSpace(body.CharityID) == "" {
		handler.WriteError(w, r, appErrors.NewBadRequest("Bad request"))
		return
	}

	if err := c.CharityService.Delete(r.Context(), subject, body.CharityID); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Charity and associated locations deleted successfully",
	})
}
