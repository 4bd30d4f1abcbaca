package cloud

import (
	"github.com/qiniu/x/xlog"
	rcsdk "github.com/rongcloud/server-sdk-go/v3/sdk"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

const (
	// DefaultPortraitURL 默认IM头像地址。
	DefaultPortraitURL = "https://developer.rongcloud.cn/static/images/newversion-logo.png"
	// SystemSenderID 发送排期通知的系统用户ID。
	SystemSenderID = "hire-cube-system"
)

// RongCloudNotifier 通过融云IM把排期通知推送给站内用户。
type RongCloudNotifier struct {
	rongCloudClient *rcsdk.RongCloud
	xl              *xlog.Logger
}

func NewRongCloudNotifier(conf *utils.RongCloudIMConfig, xl *xlog.Logger) *RongCloudNotifier {
	n := &RongCloudNotifier{
		rongCloudClient: rcsdk.NewRongCloud(conf.AppKey, conf.AppSecret),
		xl:              xl,
	}
	// 注册系统用户，首次部署时创建。
	if _, err := n.rongCloudClient.UserRegister(SystemSenderID, SystemSenderID, DefaultPortraitURL); err != nil {
		xl.Errorf("failed to register system user on rongcloud, error %v", err)
	}
	return n
}

func (n *RongCloudNotifier) send(xl *xlog.Logger, action string, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	if xl == nil {
		xl = n.xl
	}
	subject, body := notificationText(action, interview, context)
	msg := rcsdk.TXTMsg{
		Content: subject + "\n" + body,
	}
	err := n.rongCloudClient.PrivateSend(SystemSenderID, []string{recipient.ID}, "RC:TxtMsg", &msg,
		subject, "", 1, 0, 1, 1, 0)
	if err != nil {
		xl.Errorf("failed to send %s IM message to %s, error %v", action, recipient.ID, err)
		return errors2.New(errors2.ServerErrorNotifySendFail, "IM delivery failed")
	}
	return nil
}

func (n *RongCloudNotifier) NotifyScheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "scheduled", recipient, interview, context)
}

func (n *RongCloudNotifier) NotifyRescheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "rescheduled", recipient, interview, context)
}

func (n *RongCloudNotifier) NotifyCancelled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "cancelled", recipient, interview, context)
}

func (n *RongCloudNotifier) NotifyReminder(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "reminder", recipient, interview, context)
}

func (n *RongCloudNotifier) NotifyEvaluationDue(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "evaluation_due", recipient, interview, context)
}
