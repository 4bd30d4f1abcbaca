package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	ErrEmailMsg    = "邮箱不合法"
	ErrNicknameMsg = "昵称长度需要在1~50之间"
)

// SignInForm 邮箱登录/注册表单。
type SignInForm struct {
	Email string `json:"email" form:"email"`
	// Nickname 首次登录时用作初始昵称，可不填。
	Nickname string `json:"nickname" form:"nickname"`
}

func (i *SignInForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Email, validation.Required.Error(ErrEmailMsg), is.Email.Error(ErrEmailMsg)),
		validation.Field(&i.Nickname, validation.Length(0, 50).Error(ErrNicknameMsg)),
	)
}
