package scheduling

import (
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// Scheduler 排期编排器：校验请求、逐参与者查冲突、推导轮次、
// 创建面试与参与者、创建会议并触发状态推进与通知。
type Scheduler struct {
	*Lifecycle
	slots *SlotGenerator
}

func NewScheduler(interviews InterviewRepository, applications ApplicationRepository, evaluations EvaluationRepository,
	directory ParticipantDirectory, meetings MeetingProvider, notifier NotificationSender, rules Rules) *Scheduler {
	return &Scheduler{
		Lifecycle: NewLifecycle(interviews, applications, evaluations, directory, meetings, notifier, rules),
		slots:     NewSlotGenerator(interviews, directory, rules),
	}
}

// ScheduleRequest 一次排期请求。
type ScheduleRequest struct {
	ActorID         string
	ApplicationID   string
	Title           string
	Type            model.InterviewType
	Mode            model.InterviewMode
	Start           time.Time
	DurationMinutes int
	ParticipantIDs  []string
	// LeadID 负责人，空值时默认为ParticipantIDs中的第一位。
	LeadID string
	// Roles 可选的 userId -> 角色 指定。
	Roles map[string]model.ParticipantRole
}

// Schedule 发起一次排期。
// 注意冲突检查到写入之间存在读写窗口，写入层需配合唯一索引或
// 可串行化隔离兜底，见InterviewService.Create。
func (s *Scheduler) Schedule(xl *xlog.Logger, req ScheduleRequest) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	if err := s.rules.ValidateSlot(req.Start, req.DurationMinutes, s.now()); err != nil {
		return nil, err
	}

	application, err := s.applications.Get(xl, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	schedulable := false
	for _, status := range model.SchedulableApplicationStatuses {
		if application.Status == status {
			schedulable = true
			break
		}
	}
	if !schedulable {
		return nil, errInvalidState(fmt.Sprintf("application in status %s cannot be scheduled", application.Status))
	}

	existing, err := s.interviews.ListActiveByApplication(xl, req.ApplicationID)
	if err != nil {
		xl.Errorf("failed to list interviews of application %s, error %v", req.ApplicationID, err)
		return nil, err
	}
	now := s.now()
	for _, interview := range existing {
		if interview.Status == model.InterviewStatusCodeScheduled && interview.End().After(now) {
			return nil, errConflict(errors.ServerErrorPendingInterviewExists,
				fmt.Sprintf("application already has a pending interview %s", interview.ID))
		}
	}

	// 参与者全部解析成功才继续，顺便收集会议邀请邮箱。
	attendeeEmails := make([]string, 0, len(req.ParticipantIDs))
	seen := make(map[string]bool, len(req.ParticipantIDs))
	participantIDs := make([]string, 0, len(req.ParticipantIDs))
	for _, userID := range req.ParticipantIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		user, err := s.directory.ResolveUser(xl, userID)
		if err != nil {
			xl.Infof("participant %s does not resolve, error %v", userID, err)
			return nil, err
		}
		participantIDs = append(participantIDs, userID)
		if user.Email != "" {
			attendeeEmails = append(attendeeEmails, user.Email)
		}
	}
	if len(participantIDs) == 0 {
		return nil, errValidation("at least one participant is required")
	}

	for _, userID := range participantIDs {
		if s.detector.HasConflict(xl, userID, req.Start, req.DurationMinutes, "") {
			return nil, errConflict(errors.ServerErrorScheduleConflict,
				fmt.Sprintf("participant %s has a conflicting interview", userID))
		}
	}

	round := NextRound(existing)
	leadID := req.LeadID
	if leadID == "" {
		leadID = participantIDs[0]
	}
	leadFound := false
	for _, userID := range participantIDs {
		if userID == leadID {
			leadFound = true
			break
		}
	}
	if !leadFound {
		return nil, errValidation("lead must be one of the participants")
	}

	interview := &model.InterviewDo{
		ID:              utils.GenerateID(),
		ApplicationID:   req.ApplicationID,
		Title:           req.Title,
		Type:            req.Type,
		Round:           round,
		ScheduledStart:  req.Start.UTC(),
		DurationMinutes: req.DurationMinutes,
		Mode:            req.Mode,
		Status:          model.InterviewStatusCodeScheduled,
		Active:          true,
		CreateTime:      now,
		UpdateTime:      now,
		Creator:         req.ActorID,
		Updator:         req.ActorID,
	}
	s.appendNote(interview, req.ActorID, fmt.Sprintf("scheduled round %d at %s", round, interview.ScheduledStart.Format(time.RFC3339)))
	s.provisionMeeting(xl, interview, attendeeEmails)

	participants := make([]model.InterviewParticipantDo, 0, len(participantIDs))
	for _, userID := range participantIDs {
		role := model.ParticipantRoleInterviewer
		if userID == leadID {
			role = model.ParticipantRolePrimary
		}
		if r, ok := req.Roles[userID]; ok {
			role = r
		}
		participants = append(participants, model.InterviewParticipantDo{
			ID:          interview.ID + "_" + userID,
			InterviewID: interview.ID,
			UserID:      userID,
			Role:        role,
			IsLead:      userID == leadID,
			CreateTime:  now,
		})
	}

	if err := s.interviews.Create(xl, interview, participants); err != nil {
		xl.Errorf("failed to create interview for application %s, error %v", req.ApplicationID, err)
		return nil, err
	}

	// 首场面试把投递单推进到面试状态，后续排期不再重复推进。
	if len(existing) == 0 && application.Status != model.ApplicationStatusInterview {
		if err := s.applications.UpdateStatus(xl, application.ID, model.ApplicationStatusInterview, req.ActorID,
			fmt.Sprintf("first interview %s scheduled", interview.ID)); err != nil {
			xl.Errorf("failed to move application %s to interview status, error %v", application.ID, err)
		}
	}

	xl.Infof("user %s scheduled interview %s round %d for application %s", req.ActorID, interview.ID, round, req.ApplicationID)
	s.notify(xl, notifyScheduled, interview, nil)
	return interview, nil
}

// GetAvailableSlots 枚举候选时间槽。
func (s *Scheduler) GetAvailableSlots(xl *xlog.Logger, participantIDs []string, rangeStart, rangeEnd time.Time, durationMinutes int) ([]Slot, error) {
	return s.slots.Generate(xl, participantIDs, rangeStart, rangeEnd, durationMinutes)
}

// GetOverallOutcome 投递单层面的汇总结论。
func (s *Scheduler) GetOverallOutcome(xl *xlog.Logger, applicationID string) (model.Outcome, error) {
	if xl == nil {
		xl = s.xl
	}
	if _, err := s.applications.Get(xl, applicationID); err != nil {
		return model.OutcomeNone, err
	}
	interviews, err := s.interviews.ListActiveByApplication(xl, applicationID)
	if err != nil {
		xl.Errorf("failed to list interviews of application %s, error %v", applicationID, err)
		return model.OutcomeNone, err
	}
	return OverallOutcome(interviews), nil
}

// GetInterview 读取一场面试及其参与者。
func (s *Scheduler) GetInterview(xl *xlog.Logger, interviewID string) (*model.InterviewDo, []model.InterviewParticipantDo, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.interviews.Get(xl, interviewID)
	if err != nil {
		return nil, nil, err
	}
	if !interview.Active {
		return nil, nil, errors.New(errors.ServerErrorInterviewNotFound, "no such interview")
	}
	participants, err := s.interviews.Participants(xl, interviewID)
	if err != nil {
		return nil, nil, err
	}
	return interview, participants, nil
}
