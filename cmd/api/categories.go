package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/categories"

	"github.com/go-chi/chi/v5"
)

type categoryPayload struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (p *categoryPayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
}

func urlID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

// listCategoriesHandler godoc
//
//	@Summary		List categories
//	@Description	All categories ordered by id.
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	envelope{data=[]categories.Category}
//	@Failure		500	{object}	error
//	@Router			/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := app.store.Categories.List(ctx)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []*categories.Category{}
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCategoryHandler godoc
//
//	@Summary		Create category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		categoryPayload	true	"Category"
//	@Success		201		{object}	envelope{data=categories.Category}
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.normalize()
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	category, err := app.store.Categories.Create(ctx, payload.Name)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// renameCategoryHandler godoc
//
//	@Summary		Rename category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		int64			true	"Category ID"
//	@Param			payload		body		categoryPayload	true	"Category"
//	@Success		200			{object}	envelope{data=categories.Category}
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories/{categoryID} [put]
func (app *application) renameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload categoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.normalize()
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	category, err := app.store.Categories.Rename(ctx, id, payload.Name)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCategoryHandler godoc
//
//	@Summary		Delete category
//	@Description	Fails with 409 while products still reference the category.
//	@Tags			categories
//	@Param			categoryID	path	int64	true	"Category ID"
//	@Success		204
//	@Failure		409	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories/{categoryID} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Categories.Remove(ctx, id); err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
