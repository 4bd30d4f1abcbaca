package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	model "github.com/solutions/hire-cube/internal/protodef/model"
)

// mapServerError 将服务层错误翻译成对外的响应错误。
func mapServerError(err error) *model.ResponseError {
	serverErr, ok := err.(*errors2.ServerError)
	if !ok {
		return model.NewResponseErrorInternal()
	}
	switch serverErr.Kind() {
	case errors2.KindNotFound:
		switch serverErr.Code {
		case errors2.ServerErrorInterviewNotFound:
			return model.NewResponseErrorNoSuchInterview()
		case errors2.ServerErrorApplicationNotFound:
			return model.NewResponseErrorNoSuchApplication()
		case errors2.ServerErrorUserNotFound:
			return model.NewResponseErrorNoSuchUser()
		default:
			return model.NewResponseErrorNotFound()
		}
	case errors2.KindConflict:
		return model.NewResponseErrorConflict(serverErr.Summary)
	case errors2.KindInvalidState:
		return model.NewResponseErrorInvalidState(serverErr.Summary)
	case errors2.KindUnauthorized:
		return model.NewResponseErrorUnauthorized()
	case errors2.KindValidation:
		return model.NewResponseErrorValidation(serverErr)
	case errors2.KindDependencyDegraded:
		return model.NewResponseErrorExternalService()
	default:
		return model.NewResponseErrorInternal()
	}
}

// sendError 统一的错误返回路径。
func sendError(c *gin.Context, xl *xlog.Logger, requestID string, err error) {
	xl.Infof("%s %s failed, error %v", c.Request.Method, c.Request.URL.Path, err)
	responseErr := mapServerError(err)
	model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
}
