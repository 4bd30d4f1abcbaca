package scheduling

import (
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// Lifecycle 面试生命周期状态机。Scheduled为初始态，
// Completed/Cancelled/NoShow均为终态，所有迁移带守卫条件。
type Lifecycle struct {
	interviews   InterviewRepository
	applications ApplicationRepository
	evaluations  EvaluationRepository
	directory    ParticipantDirectory
	meetings     MeetingProvider
	notifier     NotificationSender
	detector     *ConflictDetector
	rules        Rules
	now          func() time.Time
	xl           *xlog.Logger
}

func NewLifecycle(interviews InterviewRepository, applications ApplicationRepository, evaluations EvaluationRepository,
	directory ParticipantDirectory, meetings MeetingProvider, notifier NotificationSender, rules Rules) *Lifecycle {
	return &Lifecycle{
		interviews:   interviews,
		applications: applications,
		evaluations:  evaluations,
		directory:    directory,
		meetings:     meetings,
		notifier:     notifier,
		detector:     NewConflictDetector(interviews, rules),
		rules:        rules,
		now:          time.Now,
		xl:           xlog.New("hire-cube-lifecycle"),
	}
}

// PlaceholderMeetingLink 会议提供方不可用时的占位链接，排期本身照常完成。
const PlaceholderMeetingLink = "meeting-link-pending"

// authorize 判断actor是否可以对该面试执行修改类操作：
// 投递单的招聘负责人或staff角色；allowParticipant时当前参与者也放行。
// 任何检查过程中的错误一律按无权限处理。
func (l *Lifecycle) authorize(xl *xlog.Logger, actorID string, interview *model.InterviewDo, allowParticipant bool) error {
	application, err := l.applications.Get(xl, interview.ApplicationID)
	if err != nil {
		xl.Errorf("authorization check failed to load application %s, deny, error %v", interview.ApplicationID, err)
		return errNoPermission("no permission")
	}
	if application.RecruiterID != "" && application.RecruiterID == actorID {
		return nil
	}
	roles, err := l.directory.GetRoles(xl, actorID)
	if err != nil {
		xl.Errorf("authorization check failed to load roles of %s, deny, error %v", actorID, err)
		return errNoPermission("no permission")
	}
	for _, role := range roles {
		for _, staff := range model.StaffRoles {
			if role == staff {
				return nil
			}
		}
	}
	if allowParticipant {
		participants, err := l.interviews.Participants(xl, interview.ID)
		if err != nil {
			xl.Errorf("authorization check failed to load participants of %s, deny, error %v", interview.ID, err)
			return errNoPermission("no permission")
		}
		for _, p := range participants {
			if p.UserID == actorID {
				return nil
			}
		}
	}
	xl.Infof("user %s has no permission on interview %s", actorID, interview.ID)
	return errNoPermission("no permission")
}

func (l *Lifecycle) getScheduled(xl *xlog.Logger, interviewID string) (*model.InterviewDo, error) {
	interview, err := l.interviews.Get(xl, interviewID)
	if err != nil {
		return nil, err
	}
	if !interview.Active {
		return nil, errors.New(errors.ServerErrorInterviewNotFound, "no such interview")
	}
	if interview.Status != model.InterviewStatusCodeScheduled {
		return nil, errInvalidState(fmt.Sprintf("interview is %s, operation requires scheduled status", interview.Status.Name()))
	}
	return interview, nil
}

func (l *Lifecycle) appendNote(interview *model.InterviewDo, actorID, content string) {
	interview.Notes = append(interview.Notes, model.InterviewNoteDo{
		Time:    l.now(),
		ActorID: actorID,
		Content: content,
	})
}

// provisionMeeting 为在线面试创建会议。提供方不可用或创建失败时
// 回退到占位链接，排期流程不因此失败。
func (l *Lifecycle) provisionMeeting(xl *xlog.Logger, interview *model.InterviewDo, attendeeEmails []string) {
	if interview.Mode != model.InterviewModeOnline {
		return
	}
	if !l.meetings.IsAvailable() {
		xl.Warnf("meeting provider unavailable, use placeholder link for interview %s", interview.ID)
		interview.MeetingID = ""
		interview.MeetingLink = PlaceholderMeetingLink
		return
	}
	meeting, err := l.meetings.CreateMeeting(xl, interview.Title, interview.ScheduledStart, interview.DurationMinutes, attendeeEmails)
	if err != nil {
		xl.Warnf("meeting provider failed for interview %s, use placeholder link, error %v", interview.ID, err)
		interview.MeetingID = ""
		interview.MeetingLink = PlaceholderMeetingLink
		return
	}
	interview.MeetingID = meeting.ID
	interview.MeetingLink = meeting.Link
}

func (l *Lifecycle) cancelMeeting(xl *xlog.Logger, interview *model.InterviewDo) {
	if interview.Mode != model.InterviewModeOnline || interview.MeetingID == "" {
		return
	}
	if ok := l.meetings.CancelMeeting(xl, interview.MeetingID); !ok {
		xl.Warnf("failed to cancel meeting %s of interview %s", interview.MeetingID, interview.ID)
	}
}

type notificationKind int

const (
	notifyScheduled notificationKind = iota
	notifyRescheduled
	notifyCancelled
	notifyReminder
	notifyEvaluationDue
)

// candidateNotified 候选人收到排期/改期/取消/提醒通知；缺席与评价通知不发给候选人。
func (k notificationKind) candidateNotified() bool {
	switch k {
	case notifyScheduled, notifyRescheduled, notifyCancelled, notifyReminder:
		return true
	default:
		return false
	}
}

// notify 向全部参与者（按类型决定是否包含候选人）发送通知。
// 单个接收者失败只记日志，不影响业务结果。
func (l *Lifecycle) notify(xl *xlog.Logger, kind notificationKind, interview *model.InterviewDo, context map[string]string) {
	recipients := make([]model.UserInfo, 0)
	participants, err := l.interviews.Participants(xl, interview.ID)
	if err != nil {
		xl.Errorf("failed to load participants of interview %s for notification, error %v", interview.ID, err)
	}
	for _, p := range participants {
		user, err := l.directory.ResolveUser(xl, p.UserID)
		if err != nil {
			xl.Infof("cannot resolve participant %s for notification, error %v", p.UserID, err)
			continue
		}
		recipients = append(recipients, *user)
	}
	if kind.candidateNotified() {
		application, err := l.applications.Get(xl, interview.ApplicationID)
		if err != nil {
			xl.Errorf("failed to load application %s for candidate notification, error %v", interview.ApplicationID, err)
		} else if candidate, err := l.directory.ResolveUser(xl, application.CandidateID); err == nil {
			recipients = append(recipients, *candidate)
		}
	}
	for _, recipient := range recipients {
		var err error
		switch kind {
		case notifyScheduled:
			err = l.notifier.NotifyScheduled(xl, recipient, interview, context)
		case notifyRescheduled:
			err = l.notifier.NotifyRescheduled(xl, recipient, interview, context)
		case notifyCancelled:
			err = l.notifier.NotifyCancelled(xl, recipient, interview, context)
		case notifyReminder:
			err = l.notifier.NotifyReminder(xl, recipient, interview, context)
		case notifyEvaluationDue:
			err = l.notifier.NotifyEvaluationDue(xl, recipient, interview, context)
		}
		if err != nil {
			xl.Warnf("failed to notify %s for interview %s, error %v", recipient.ID, interview.ID, err)
		}
	}
}

func (l *Lifecycle) participantEmails(xl *xlog.Logger, interviewID string) []string {
	emails := make([]string, 0)
	participants, err := l.interviews.Participants(xl, interviewID)
	if err != nil {
		return emails
	}
	for _, p := range participants {
		if user, err := l.directory.ResolveUser(xl, p.UserID); err == nil && user.Email != "" {
			emails = append(emails, user.Email)
		}
	}
	return emails
}

// Reschedule 改期。仅Scheduled状态允许；新时间重新校验并重新检查冲突
// （排除自身）；在线面试的会议取消重建；追加一条记录原时间与原因的日志。
func (l *Lifecycle) Reschedule(xl *xlog.Logger, actorID, interviewID string, newStart time.Time, durationMinutes int, reason string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = l.xl
	}
	interview, err := l.getScheduled(xl, interviewID)
	if err != nil {
		return nil, err
	}
	if err := l.authorize(xl, actorID, interview, false); err != nil {
		return nil, err
	}
	if durationMinutes == 0 {
		durationMinutes = interview.DurationMinutes
	}
	if err := l.rules.ValidateSlot(newStart, durationMinutes, l.now()); err != nil {
		return nil, err
	}
	participants, err := l.interviews.Participants(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to load participants of interview %s, error %v", interviewID, err)
		return nil, err
	}
	for _, p := range participants {
		if l.detector.HasConflict(xl, p.UserID, newStart, durationMinutes, interviewID) {
			return nil, errConflict(errors.ServerErrorScheduleConflict,
				fmt.Sprintf("participant %s has a conflicting interview", p.UserID))
		}
	}

	oldStart := interview.ScheduledStart
	l.cancelMeeting(xl, interview)
	interview.ScheduledStart = newStart.UTC()
	interview.DurationMinutes = durationMinutes
	interview.Reminded = false
	l.provisionMeeting(xl, interview, l.participantEmails(xl, interviewID))
	l.appendNote(interview, actorID, fmt.Sprintf("rescheduled from %s to %s: %s",
		oldStart.Format(time.RFC3339), interview.ScheduledStart.Format(time.RFC3339), reason))
	interview.UpdateTime = l.now()
	interview.Updator = actorID
	if err := l.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to update interview %s, error %v", interviewID, err)
		return nil, err
	}
	xl.Infof("interview %s rescheduled from %s to %s by %s", interviewID, oldStart, interview.ScheduledStart, actorID)
	l.notify(xl, notifyRescheduled, interview, map[string]string{"reason": reason})
	return interview, nil
}

// Cancel 取消排期。仅Scheduled状态允许。
func (l *Lifecycle) Cancel(xl *xlog.Logger, actorID, interviewID, reason string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = l.xl
	}
	interview, err := l.getScheduled(xl, interviewID)
	if err != nil {
		return nil, err
	}
	if err := l.authorize(xl, actorID, interview, false); err != nil {
		return nil, err
	}
	l.cancelMeeting(xl, interview)
	interview.Status = model.InterviewStatusCodeCancelled
	l.appendNote(interview, actorID, fmt.Sprintf("cancelled: %s", reason))
	interview.UpdateTime = l.now()
	interview.Updator = actorID
	if err := l.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to update interview %s, error %v", interviewID, err)
		return nil, err
	}
	xl.Infof("interview %s cancelled by %s", interviewID, actorID)
	l.notify(xl, notifyCancelled, interview, map[string]string{"reason": reason})
	return interview, nil
}

// Complete 登记面试已进行。开始时间后需经过完成等待期才允许；
// 参与者本人也可执行；完成后推进投递单状态并通知参与者提交评价。
func (l *Lifecycle) Complete(xl *xlog.Logger, actorID, interviewID, summary string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = l.xl
	}
	interview, err := l.getScheduled(xl, interviewID)
	if err != nil {
		return nil, err
	}
	if err := l.authorize(xl, actorID, interview, true); err != nil {
		return nil, err
	}
	if l.now().Before(interview.ScheduledStart.Add(l.rules.CompletionDelay)) {
		return nil, errors.New(errors.ServerErrorTooEarlyToComplete,
			fmt.Sprintf("interview can be completed %d minutes after its scheduled start", int(l.rules.CompletionDelay.Minutes())))
	}
	interview.Status = model.InterviewStatusCodeCompleted
	note := "completed"
	if summary != "" {
		note = "completed: " + summary
	}
	l.appendNote(interview, actorID, note)
	interview.UpdateTime = l.now()
	interview.Updator = actorID
	if err := l.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to update interview %s, error %v", interviewID, err)
		return nil, err
	}
	if err := l.applications.UpdateStatus(xl, interview.ApplicationID, model.ApplicationStatusUnderReview, actorID,
		fmt.Sprintf("interview %s round %d completed", interview.ID, interview.Round)); err != nil {
		xl.Errorf("failed to propagate status to application %s, error %v", interview.ApplicationID, err)
	}
	xl.Infof("interview %s completed by %s", interviewID, actorID)
	l.notify(xl, notifyEvaluationDue, interview, nil)
	return interview, nil
}

// MarkNoShow 标记缺席。开始时间后需经过宽限期才允许；参与者本人也可执行。
func (l *Lifecycle) MarkNoShow(xl *xlog.Logger, actorID, interviewID, reason string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = l.xl
	}
	interview, err := l.getScheduled(xl, interviewID)
	if err != nil {
		return nil, err
	}
	if err := l.authorize(xl, actorID, interview, true); err != nil {
		return nil, err
	}
	if l.now().Before(interview.ScheduledStart.Add(l.rules.NoShowGrace)) {
		return nil, errors.New(errors.ServerErrorTooEarlyForNoShow,
			fmt.Sprintf("no-show can be marked %d minutes after the scheduled start", int(l.rules.NoShowGrace.Minutes())))
	}
	interview.Status = model.InterviewStatusCodeNoShow
	note := "marked as no-show"
	if reason != "" {
		note = "marked as no-show: " + reason
	}
	l.appendNote(interview, actorID, note)
	interview.UpdateTime = l.now()
	interview.Updator = actorID
	if err := l.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to update interview %s, error %v", interviewID, err)
		return nil, err
	}
	xl.Infof("interview %s marked no-show by %s", interviewID, actorID)
	return interview, nil
}

// Delete 软删除。有评价的面试不可删除；投递单处于面试状态时
// 不允许删除其唯一一场面试。
func (l *Lifecycle) Delete(xl *xlog.Logger, actorID, interviewID string) error {
	if xl == nil {
		xl = l.xl
	}
	interview, err := l.interviews.Get(xl, interviewID)
	if err != nil {
		return err
	}
	if !interview.Active {
		return errors.New(errors.ServerErrorInterviewNotFound, "no such interview")
	}
	if err := l.authorize(xl, actorID, interview, false); err != nil {
		return err
	}
	evaluations, err := l.evaluations.ListByInterview(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to list evaluations of interview %s, error %v", interviewID, err)
		return err
	}
	if len(evaluations) > 0 {
		return errInvalidState("interview with evaluations cannot be deleted")
	}
	siblings, err := l.interviews.ListActiveByApplication(xl, interview.ApplicationID)
	if err != nil {
		xl.Errorf("failed to list interviews of application %s, error %v", interview.ApplicationID, err)
		return err
	}
	application, err := l.applications.Get(xl, interview.ApplicationID)
	if err != nil {
		return err
	}
	if application.Status == model.ApplicationStatusInterview && len(siblings) == 1 {
		return errInvalidState("the only interview of an in-interview application cannot be deleted")
	}
	interview.Active = false
	l.appendNote(interview, actorID, "deleted")
	interview.UpdateTime = l.now()
	interview.Updator = actorID
	if err := l.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to update interview %s, error %v", interviewID, err)
		return err
	}
	xl.Infof("interview %s deleted by %s", interviewID, actorID)
	return nil
}
