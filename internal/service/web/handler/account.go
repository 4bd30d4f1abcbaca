package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/form"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/db"
)

// AccountApiHandler 账号相关接口。
type AccountApiHandler struct {
	Account *db.AccountService
}

func NewAccountApiHandler(account *db.AccountService) *AccountApiHandler {
	return &AccountApiHandler{Account: account}
}

func makeUserInfoResponse(account *model.AccountDo) model.UserInfoResponse {
	return model.UserInfoResponse{
		ID:       account.ID,
		Nickname: account.Nickname,
		Email:    account.Email,
		Phone:    account.Phone,
	}
}

// SignUpOrIn 邮箱登录，账号不存在时自动注册。
func (h *AccountApiHandler) SignUpOrIn(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	args := form.SignInForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	account, err := h.Account.GetAccountByEmail(xl, args.Email)
	if err != nil {
		if !errors2.IsNotFound(err) {
			sendError(c, xl, requestID, err)
			return
		}
		account = &model.AccountDo{
			ID:       utils.GenerateID(),
			Email:    args.Email,
			Nickname: args.Nickname,
		}
		if account.Nickname == "" {
			account.Nickname = args.Email
		}
		if err := h.Account.CreateAccount(xl, account); err != nil {
			sendError(c, xl, requestID, err)
			return
		}
		xl.Infof("account %s created for email %s", account.ID, args.Email)
	}
	accountToken, err := h.Account.AccountLogin(xl, account.ID)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("user %s logged in", account.ID)
	resp := model.SignInResponse{
		UserInfoResponse: makeUserInfoResponse(account),
		Token:            accountToken.Token,
	}
	model.NewSuccessResponse(resp).WithRequestID(requestID).Send(c)
}

// SignOut 登出当前账号。
func (h *AccountApiHandler) SignOut(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	if err := h.Account.AccountLogout(xl, userID); err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("user %s logged out", userID)
	model.NewSuccessResponse(nil).WithRequestID(requestID).Send(c)
}

// GetAccountInfo 获取当前账号信息。
func (h *AccountApiHandler) GetAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	account, err := h.Account.GetAccountByID(xl, userID)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	model.NewSuccessResponse(makeUserInfoResponse(account)).WithRequestID(requestID).Send(c)
}
