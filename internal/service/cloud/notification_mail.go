package cloud

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// MailNotifier 通过SMTP发送邮件通知。
type MailNotifier struct {
	conf *utils.MailConfig
	xl   *xlog.Logger
}

func NewMailNotifier(conf *utils.MailConfig, xl *xlog.Logger) *MailNotifier {
	return &MailNotifier{
		conf: conf,
		xl:   xl,
	}
}

func (n *MailNotifier) send(xl *xlog.Logger, action string, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	if xl == nil {
		xl = n.xl
	}
	if !n.conf.Enabled {
		return nil
	}
	if recipient.Email == "" {
		xl.Infof("recipient %s has no email, skip %s mail", recipient.ID, action)
		return nil
	}
	subject, body := notificationText(action, interview, context)
	msg := strings.Join([]string{
		"From: " + n.conf.From,
		"To: " + recipient.Email,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")
	addr := fmt.Sprintf("%s:%d", n.conf.SMTPHost, n.conf.SMTPPort)
	var auth smtp.Auth
	if n.conf.Username != "" {
		auth = smtp.PlainAuth("", n.conf.Username, n.conf.Password, n.conf.SMTPHost)
	}
	err := smtp.SendMail(addr, auth, n.conf.From, []string{recipient.Email}, []byte(msg))
	if err != nil {
		xl.Errorf("failed to send %s mail to %s, error %v", action, recipient.Email, err)
		return errors2.New(errors2.ServerErrorNotifySendFail, "mail delivery failed")
	}
	return nil
}

func (n *MailNotifier) NotifyScheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "scheduled", recipient, interview, context)
}

func (n *MailNotifier) NotifyRescheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "rescheduled", recipient, interview, context)
}

func (n *MailNotifier) NotifyCancelled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "cancelled", recipient, interview, context)
}

func (n *MailNotifier) NotifyReminder(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "reminder", recipient, interview, context)
}

func (n *MailNotifier) NotifyEvaluationDue(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send(xl, "evaluation_due", recipient, interview, context)
}
