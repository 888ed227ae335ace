package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/profiles"
)

type profileResponse struct {
	profiles.Profile
	Warning string `json:"warning,omitempty"`
}

// getProfileHandler godoc
//
//	@Summary		Get current profile
//	@Description	Returns the saved profile, or a default built from the account when none was saved yet.
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	envelope{data=profiles.Lookup}
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/profile [get]
func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	lookup, err := app.store.Profiles.Current(ctx)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, lookup); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProfileHandler godoc
//
//	@Summary		Update current profile
//	@Description	Saves name and phone and optionally replaces the avatar.
//	@Tags			profile
//	@Accept			mpfd
//	@Produce		json
//	@Param			full_name	formData	string	true	"Full name"
//	@Param			phone		formData	string	false	"Phone, (NN) NNNNN-NNNN"
//	@Param			avatar		formData	file	false	"jpeg, png or webp image (max 5 MB)"
//	@Success		200			{object}	envelope{data=profileResponse}
//	@Failure		400			{object}	error
//	@Failure		401			{object}	error
//	@Failure		502			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/profile [put]
func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	in := profiles.UpdateInput{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	file, closer, err := formImage(r, "avatar")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	in.File = file

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := app.store.Profiles.Update(ctx, in)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	resp := profileResponse{Profile: result.Profile}
	if result.CleanupWarning != nil {
		resp.Warning = "the previous avatar could not be removed"
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
