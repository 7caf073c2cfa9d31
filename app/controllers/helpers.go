package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/bind"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

// bindJSON decodes and validates the request body, writing the error
// response itself on failure. Returns false when the request was answered.
func bindJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return false
	}
	return true
}

// fail maps a service error onto the response envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs services.ValidationErrors
	var stock *services.InsufficientStockError
	var gw *services.GatewayError

	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(w, verrs)
	case errors.As(err, &stock):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, "resource not found")
	case errors.Is(err, services.ErrOrderDelivered):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(w)
	case errors.Is(err, services.ErrTokenRoleForbidden):
		response.Forbidden(w)
	case errors.As(err, &gw):
		logger.WithCtx(r.Context()).Error("gateway failure", "error", err)
		response.Internal(w)
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.Internal(w)
	}
}

// pageParams reads ?page= and ?limit= with sane defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
