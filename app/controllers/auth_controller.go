package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{service: s}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body services.RegisterInput
	if !bindJSON(w, r, &body) {
		return
	}
	result, err := c.service.Register(r.Context(), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{
		"user":         result.User,
		"token":        result.Token,
		"refreshToken": result.RefreshToken,
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	result, err := c.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{
		"user":         result.User,
		"token":        result.Token,
		"refreshToken": result.RefreshToken,
	})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	user, err := c.service.Me(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"user": user})
}

// UpdateProfile changes the display name and optionally the avatar, sent
// as a base64 image payload.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	var avatar []byte
	if body.Avatar != "" {
		decoded, err := base64.StdEncoding.DecodeString(body.Avatar)
		if err != nil {
			response.ValidationFailed(w, map[string]string{"avatar": "avatar must be base64 encoded"})
			return
		}
		avatar = decoded
	}
	user, err := c.service.UpdateProfile(r.Context(), userID, body.Name, avatar)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"user": user})
}

// Users lists all accounts. Admin only.
func (c *AuthController) Users(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, err := c.service.Users(r.Context(), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"users": users})
}
