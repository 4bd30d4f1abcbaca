package cloud

import (
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

// NewNotificationSender 按配置创建通知发送方。
func NewNotificationSender(conf *utils.Config, xl *xlog.Logger) (scheduling.NotificationSender, error) {
	if xl == nil {
		xl = xlog.New("hire-cube-notification")
	}
	notifyConf := conf.Notification
	if notifyConf == nil {
		notifyConf = &utils.NotificationConfig{Provider: "mock"}
	}
	switch notifyConf.Provider {
	// 模拟的通知发送器，仅供测试使用。
	case "mock", "test", "":
		return &MockNotifier{}, nil
	case "mail":
		if notifyConf.Mail == nil {
			return nil, fmt.Errorf("mail notifier requires mail config")
		}
		return NewMailNotifier(notifyConf.Mail, xl), nil
	case "rongcloud":
		if notifyConf.RongCloud == nil {
			return nil, fmt.Errorf("rongcloud notifier requires rongcloud config")
		}
		return NewRongCloudNotifier(notifyConf.RongCloud, xl), nil
	default:
		xl.Errorf("unsupported notification provider %s", notifyConf.Provider)
		return nil, fmt.Errorf("unsupported notification provider")
	}
}

// notificationText 按动作拼接通知的标题与正文。
func notificationText(action string, interview *model.InterviewDo, context map[string]string) (subject, body string) {
	start := interview.ScheduledStart.Format("2006-01-02 15:04 MST")
	switch action {
	case "scheduled":
		subject = fmt.Sprintf("面试邀请：%s", interview.Title)
		body = fmt.Sprintf("%s（第%d轮）定于 %s 进行，时长%d分钟。", interview.Title, interview.Round, start, interview.DurationMinutes)
	case "rescheduled":
		subject = fmt.Sprintf("面试改期：%s", interview.Title)
		body = fmt.Sprintf("%s 已改期至 %s，时长%d分钟。", interview.Title, start, interview.DurationMinutes)
	case "cancelled":
		subject = fmt.Sprintf("面试取消：%s", interview.Title)
		body = fmt.Sprintf("原定于 %s 的 %s 已取消。", start, interview.Title)
	case "reminder":
		subject = fmt.Sprintf("面试提醒：%s", interview.Title)
		body = fmt.Sprintf("%s 将于 %s 开始，请提前准备。", interview.Title, start)
	case "evaluation_due":
		subject = fmt.Sprintf("请提交评价：%s", interview.Title)
		body = fmt.Sprintf("%s 已结束，请尽快提交面试评价。", interview.Title)
	}
	if interview.MeetingLink != "" && (action == "scheduled" || action == "rescheduled" || action == "reminder") {
		body += fmt.Sprintf("\n会议入口：%s", interview.MeetingLink)
	}
	if reason, ok := context["reason"]; ok && reason != "" {
		body += fmt.Sprintf("\n原因：%s", reason)
	}
	return subject, body
}

// MockNotifier 记录发送请求，不对外发送。
type MockNotifier struct {
	Sent []string
}

func (n *MockNotifier) send(action string, recipient model.UserInfo) error {
	n.Sent = append(n.Sent, fmt.Sprintf("%s:%s:%s", action, recipient.ID, time.Now().Format(time.RFC3339)))
	return nil
}

func (n *MockNotifier) NotifyScheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send("scheduled", recipient)
}

func (n *MockNotifier) NotifyRescheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send("rescheduled", recipient)
}

func (n *MockNotifier) NotifyCancelled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send("cancelled", recipient)
}

func (n *MockNotifier) NotifyReminder(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send("reminder", recipient)
}

func (n *MockNotifier) NotifyEvaluationDue(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return n.send("evaluation_due", recipient)
}
