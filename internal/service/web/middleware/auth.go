package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	service "github.com/solutions/hire-cube/internal/service/db"
)

var (
	accountService *service.AccountService
	xl             = xlog.New("Middleware")
)

func InitMiddleware(conf utils.Config) {
	var err error
	accountService, err = service.NewAccountService(*conf.Mongo, conf.JwtKey, xl)
	if err != nil {
		xl.Fatalf("error creating account service err:%v", err)
	}
}

// Authenticate 校验请求者的身份。
func Authenticate(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId

	// 根据Authorization:Bearer <token>校验。
	FetchTokenFromHeader(xl, requestID, c)
}

func FetchTokenFromHeader(xl *xlog.Logger, requestID string, c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		xl.Debug("authorization header is empty or in wrong format")
		xl.Debugf("%s %s: request unauthorized, wrong auth header format", c.Request.Method, c.Request.URL.Path)

		responseErr := model.NewResponseErrorNotLoggedIn()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		c.Abort()
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	id, err := accountService.GetIDByToken(xl, token)
	if err != nil {
		xl.Debugf("%s %s: request unauthorized, error %v", c.Request.Method, c.Request.URL.Path, err)
		responseErr := model.NewResponseErrorBadToken()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		c.Abort()
		return
	}
	user, _ := accountService.GetAccountByID(xl, id)
	c.Set(model.UserContextKey, *user)
	c.Set(model.UserIDContextKey, id)
}
