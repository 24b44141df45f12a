package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/logging"
    "github.com/iliyamo/storefront/internal/service"
)

// errorBody is the single error envelope used by every endpoint.
type errorBody struct {
    Error string `json:"error"`
}

func fail(c echo.Context, status int, msg string) error {
    return c.JSON(status, errorBody{Error: msg})
}

// failInternal logs err with its cause and answers with an opaque 500.
func failInternal(c echo.Context, logger zerolog.Logger, msg string, err error) error {
    logging.Error(logger.With().Str("path", c.Path()).Logger(), msg, err)
    return fail(c, http.StatusInternalServerError, "internal error")
}

// failService maps a service error kind to its status code.  Only the
// message of client-facing kinds reaches the response body.
func failService(c echo.Context, logger zerolog.Logger, err error) error {
    var se *service.Error
    if !errors.As(err, &se) {
        return failInternal(c, logger, "service failure", err)
    }
    switch se.Kind {
    case service.KindValidation:
        return fail(c, http.StatusBadRequest, se.Message)
    case service.KindConflict:
        return fail(c, http.StatusConflict, se.Message)
    case service.KindAuthentication:
        return fail(c, http.StatusUnauthorized, se.Message)
    }
    return failInternal(c, logger, se.Message, err)
}
