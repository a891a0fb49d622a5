package handler

import (
	"errors"
	"net/http"

	"github.com/pamoja-connect/Chama-manager/internal/service"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// fail maps a service error onto the uniform envelope. Idempotent
// "already done" conflicts are reported as success with an info message so
// double-submits do not surface as errors to the client.
func fail(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var pErr *service.PermissionError
	var cErr *service.StateConflictError
	var nErr *service.NotFoundError

	switch {
	case errors.As(err, &vErr):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, vErr.Msg)
	case errors.As(err, &pErr):
		util.Error(c, http.StatusForbidden, util.CodePermission, pErr.Error())
	case errors.As(err, &cErr):
		if cErr.AlreadyDone {
			util.Success(c, util.Response{"info": cErr.Msg})
			return
		}
		util.Error(c, http.StatusConflict, util.CodeConflict, cErr.Msg)
	case errors.As(err, &nErr):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, nErr.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}

// withWarnings folds collaborator warnings into a success payload.
func withWarnings(data util.Response, warnings []string) util.Response {
	if len(warnings) > 0 {
		data["warnings"] = warnings
	}
	return data
}
