package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/products"
	"storefront/internal/params"
)

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	One page of products ordered by title, with pagination metadata.
//	@Tags			products
//	@Produce		json
//	@Param			page	query		int	false	"Page (1-based)"	default(1)
//	@Param			limit	query		int	false	"Page size"			default(8)	maximum(30)
//	@Success		200		{object}	envelope{data=products.Page}
//	@Failure		500		{object}	error
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, err := app.store.Products.ListPage(ctx, p.Page, p.Limit)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listProductsByCategoryHandler godoc
//
//	@Summary		Products grouped by category
//	@Description	Every category in id order with its products; empty categories are included.
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	envelope{data=[]products.CategoryGroup}
//	@Failure		500	{object}	error
//	@Router			/products/by-category [get]
func (app *application) listProductsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	groups, err := app.store.Products.ListGroupedByCategory(ctx)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}
	if groups == nil {
		groups = []*products.CategoryGroup{}
	}

	if err := app.jsonResponse(w, http.StatusOK, groups); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getProductHandler godoc
//
//	@Summary		Get product
//	@Tags			products
//	@Produce		json
//	@Param			productID	path		int64	true	"Product ID"
//	@Success		200			{object}	envelope{data=products.Product}
//	@Failure		404			{object}	error
//	@Router			/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product, err := app.store.Products.GetByID(ctx, id)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

func readProductInput(w http.ResponseWriter, r *http.Request) (products.Input, error) {
	var in products.Input
	if err := readJSON(w, r, &in); err != nil {
		return in, err
	}
	if err := Validate.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}

// createProductHandler godoc
//
//	@Summary		Create product
//	@Description	price and category_id accept numbers or numeric strings.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		products.Input	true	"Product"
//	@Success		201		{object}	envelope{data=products.Record}
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readProductInput(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	record, err := app.store.Products.Create(ctx, in)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductHandler godoc
//
//	@Summary		Update product
//	@Description	Replaces every field of the product.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int64			true	"Product ID"
//	@Param			payload		body		products.Input	true	"Product"
//	@Success		200			{object}	envelope{data=products.Record}
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	in, err := readProductInput(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	record, err := app.store.Products.Update(ctx, id, in)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProductHandler godoc
//
//	@Summary		Delete product
//	@Tags			products
//	@Param			productID	path	int64	true	"Product ID"
//	@Success		204
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Products.Remove(ctx, id); err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type imageUploadResponse struct {
	URL string `json:"url"`
}

// uploadProductImageHandler godoc
//
//	@Summary		Upload product image
//	@Description	Stores a jpeg, png or webp image (max 5 MB) and returns its public URL.
//	@Tags			products
//	@Accept			mpfd
//	@Produce		json
//	@Param			image	formData	file	true	"Image"
//	@Success		201		{object}	envelope{data=imageUploadResponse}
//	@Failure		400		{object}	error
//	@Failure		502		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/images [post]
func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	file, closer, err := formImage(r, "image")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if file == nil {
		app.badRequestResponse(w, r, errors.New("image is required"))
		return
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := app.store.Products.UploadImage(ctx, *file)
	if err != nil {
		app.backendErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, imageUploadResponse{URL: url}); err != nil {
		app.internalServerError(w, r, err)
	}
}
