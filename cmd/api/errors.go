package main

import (
	"errors"
	"net/http"

	"storefront/internal/backend"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/params"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("conflict response", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("upload failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadGateway, "could not store the file")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// backendErrorResponse maps repository errors onto HTTP statuses.
func (app *application) backendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var bErr *backend.Error

	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		app.unauthorizedErrorResponse(w, r, err)
	case errors.Is(err, backend.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, params.ErrInvalidPage),
		errors.Is(err, categories.ErrEmptyName),
		errors.Is(err, products.ErrInvalidPrice),
		errors.Is(err, products.ErrInvalidCategoryID):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, products.ErrUnknownCategory):
		app.conflictResponse(w, r, products.ErrUnknownCategory)
	case errors.As(err, new(*backend.UploadError)):
		app.badGatewayResponse(w, r, err)
	case errors.As(err, &bErr) && bErr.Code == backend.CodeForeignKeyViolation:
		app.conflictResponse(w, r, errors.New("the record is still referenced by other rows"))
	case errors.As(err, &bErr) && bErr.Code == backend.CodeUniqueViolation:
		app.conflictResponse(w, r, errors.New("the record already exists"))
	default:
		app.internalServerError(w, r, err)
	}
}
