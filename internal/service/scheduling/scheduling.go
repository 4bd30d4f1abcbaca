// Package scheduling 实现面试排期与评价汇总的核心逻辑：
// 冲突检测、时间槽生成、轮次推导、面试生命周期状态机与结论聚合。
// 持久化、用户目录、会议与通知均通过接口注入，本包不持有全局状态。
package scheduling

import (
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// InterviewRepository 面试及其参与者的存取。
type InterviewRepository interface {
	// Create 在同一次调用中写入面试与全部参与者。
	Create(xl *xlog.Logger, interview *model.InterviewDo, participants []model.InterviewParticipantDo) error
	Get(xl *xlog.Logger, interviewID string) (*model.InterviewDo, error)
	Update(xl *xlog.Logger, interview *model.InterviewDo) error
	// ListActiveByApplication 返回投递单下全部未软删除的面试。
	ListActiveByApplication(xl *xlog.Logger, applicationID string) ([]model.InterviewDo, error)
	// ListScheduledByParticipant 返回用户参与的全部未软删除、状态为已排期的面试。
	ListScheduledByParticipant(xl *xlog.Logger, userID string) ([]model.InterviewDo, error)
	Participants(xl *xlog.Logger, interviewID string) ([]model.InterviewParticipantDo, error)
}

// ApplicationRepository 投递单的读取与状态推进。
type ApplicationRepository interface {
	Get(xl *xlog.Logger, applicationID string) (*model.ApplicationDo, error)
	UpdateStatus(xl *xlog.Logger, applicationID string, status model.ApplicationStatus, actorID, comment string) error
}

// ParticipantDirectory 用户目录，解析用户与角色。
type ParticipantDirectory interface {
	ResolveUser(xl *xlog.Logger, userID string) (*model.UserInfo, error)
	GetRoles(xl *xlog.Logger, userID string) ([]string, error)
}

// EvaluationRepository 评价的存取。每个(面试,评价人)至多一条。
type EvaluationRepository interface {
	Insert(xl *xlog.Logger, evaluation *model.EvaluationDo) error
	Get(xl *xlog.Logger, interviewID, evaluatorID string) (*model.EvaluationDo, error)
	ListByInterview(xl *xlog.Logger, interviewID string) ([]model.EvaluationDo, error)
	Update(xl *xlog.Logger, evaluation *model.EvaluationDo) error
}

// Meeting 会议提供方创建的会议。
type Meeting struct {
	ID       string
	Link     string
	Password string
}

// MeetingProvider 在线会议提供方，可插拔。
type MeetingProvider interface {
	CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*Meeting, error)
	CancelMeeting(xl *xlog.Logger, meetingID string) bool
	IsAvailable() bool
}

// NotificationSender 通知发送方。发送失败不阻断业务流程。
type NotificationSender interface {
	NotifyScheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error
	NotifyRescheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error
	NotifyCancelled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error
	NotifyReminder(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error
	NotifyEvaluationDue(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error
}

// Rules 排期业务规则，由配置换算为内部表示。
type Rules struct {
	Location          *time.Location
	BusinessStartHour int
	BusinessEndHour   int
	SlotStride        time.Duration
	// Buffer 已有面试结束后的过渡缓冲，仅加在已有面试的结束侧。
	Buffer          time.Duration
	AdvanceNotice   time.Duration
	CompletionDelay time.Duration
	NoShowGrace     time.Duration
	EvaluationEdit  time.Duration
	ReminderLead    time.Duration
}

// NewRules 从配置构造规则，零值字段取默认值。
func NewRules(conf *utils.SchedulingConfig) Rules {
	r := Rules{
		Location:          time.UTC,
		BusinessStartHour: 9,
		BusinessEndHour:   18,
		SlotStride:        30 * time.Minute,
		Buffer:            15 * time.Minute,
		AdvanceNotice:     time.Hour,
		CompletionDelay:   10 * time.Minute,
		NoShowGrace:       15 * time.Minute,
		EvaluationEdit:    7 * 24 * time.Hour,
		ReminderLead:      60 * time.Minute,
	}
	if conf == nil {
		return r
	}
	r.Location = conf.Location()
	if conf.BusinessStartHour > 0 {
		r.BusinessStartHour = conf.BusinessStartHour
	}
	if conf.BusinessEndHour > 0 {
		r.BusinessEndHour = conf.BusinessEndHour
	}
	if conf.SlotStrideMinutes > 0 {
		r.SlotStride = time.Duration(conf.SlotStrideMinutes) * time.Minute
	}
	if conf.BufferMinutes > 0 {
		r.Buffer = time.Duration(conf.BufferMinutes) * time.Minute
	}
	if conf.AdvanceNoticeMinutes > 0 {
		r.AdvanceNotice = time.Duration(conf.AdvanceNoticeMinutes) * time.Minute
	}
	if conf.CompletionDelayMinutes > 0 {
		r.CompletionDelay = time.Duration(conf.CompletionDelayMinutes) * time.Minute
	}
	if conf.NoShowGraceMinutes > 0 {
		r.NoShowGrace = time.Duration(conf.NoShowGraceMinutes) * time.Minute
	}
	if conf.EvaluationEditDays > 0 {
		r.EvaluationEdit = time.Duration(conf.EvaluationEditDays) * 24 * time.Hour
	}
	if conf.ReminderLeadMinutes > 0 {
		r.ReminderLead = time.Duration(conf.ReminderLeadMinutes) * time.Minute
	}
	return r
}

// ValidateSlot 校验一个排期时间：提前量、工作日、工作时间内起止。
func (r Rules) ValidateSlot(start time.Time, durationMinutes int, now time.Time) error {
	if durationMinutes < 1 || durationMinutes > 480 {
		return errValidation("duration must be between 1 and 480 minutes")
	}
	if start.Before(now.Add(r.AdvanceNotice)) {
		return errValidation("interview must be scheduled at least 1 hour in advance")
	}
	local := start.In(r.Location)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return errValidation("interview cannot be scheduled on a weekend")
	}
	startMinute := local.Hour()*60 + local.Minute()
	endMinute := startMinute + durationMinutes
	if startMinute < r.BusinessStartHour*60 || endMinute > r.BusinessEndHour*60 {
		return errValidation("interview must fit within business hours")
	}
	return nil
}
