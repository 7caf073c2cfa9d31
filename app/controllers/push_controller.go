package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

type PushController struct {
	service *services.PushTokenService
}

func NewPushController(s *services.PushTokenService) *PushController {
	return &PushController{service: s}
}

// SavePushToken registers or refreshes the push token. A caller may only
// register a token against its own account unless it is an admin.
func (c *PushController) SavePushToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    string `json:"userId"`
		PushToken string `json:"pushToken"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	callerID, _ := middleware.UserIDFromCtx(r)
	role, _ := middleware.RoleFromCtx(r)
	targetID := body.UserID
	if targetID == "" {
		targetID = callerID
	}
	if targetID != callerID && role != models.RoleAdmin {
		response.Forbidden(w)
		return
	}
	if body.PushToken == "" {
		response.ValidationFailed(w, map[string]string{"pushToken": "push token is required"})
		return
	}
	if err := c.service.SetPushToken(r.Context(), targetID, body.PushToken); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"saved": true})
}

// CleanupTokens runs the sweep on demand. Admin only; the same sweep also
// runs on the daily schedule.
func (c *PushController) CleanupTokens(w http.ResponseWriter, r *http.Request) {
	report, err := c.service.CleanupSweep(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"report": report})
}

// TokenStatus reports a user's lease state. Admin only.
func (c *PushController) TokenStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.service.Status(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"status": status})
}
