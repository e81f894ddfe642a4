package api

import (
	"errors"

	"GigCredit/internal/domain/models"
	xhttp "GigCredit/pkg/http"
	xlogger "GigCredit/pkg/logger"

	"github.com/labstack/echo/v4"
)

// toAppError maps domain errors onto HTTP errors. Anything unrecognised is
// returned unchanged and rendered as a 500.
func toAppError(err error) error {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
		sc *models.StateConflictError
		oe *models.OwnershipError
	)
	switch {
	case errors.As(err, &ve):
		appErr := xhttp.ValidationFailed(ve.Field, ve.Error())
		if ve.Index >= 0 {
			appErr.WithParam("index", ve.Index)
		}
		return appErr
	case errors.As(err, &nf):
		return xhttp.NotFoundError(nf.Error())
	case errors.As(err, &sc):
		appErr := xhttp.ConflictError(sc.Error())
		if sc.Current != "" {
			appErr.WithParam("current", sc.Current)
		}
		return appErr
	case errors.As(err, &oe):
		return xhttp.ForbiddenError(oe.Error())
	}
	return err
}

// fail renders err, logging only the failures that are not the caller's fault.
func fail(c echo.Context, log *xlogger.Logger, op string, err error) error {
	mapped := toAppError(err)
	var appErr *xhttp.AppError
	if !errors.As(mapped, &appErr) {
		log.Error(op+" failed", xlogger.Error(err), xlogger.String("path", c.Path()))
	}
	return xhttp.AppErrorResponse(c, mapped)
}
