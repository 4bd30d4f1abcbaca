package scheduling

import (
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// memStore 内存版存储，实现调度包的全部存取接口，仅测试使用。
type memStore struct {
	interviews   map[string]*model.InterviewDo
	participants map[string][]model.InterviewParticipantDo
	applications map[string]*model.ApplicationDo
	users        map[string]*model.UserInfo
	roles        map[string][]string
	evaluations  map[string]*model.EvaluationDo

	listErr  bool
	rolesErr bool

	statusUpdates []string
}

func newMemStore() *memStore {
	return &memStore{
		interviews:   make(map[string]*model.InterviewDo),
		participants: make(map[string][]model.InterviewParticipantDo),
		applications: make(map[string]*model.ApplicationDo),
		users:        make(map[string]*model.UserInfo),
		roles:        make(map[string][]string),
		evaluations:  make(map[string]*model.EvaluationDo),
	}
}

func (m *memStore) Create(xl *xlog.Logger, interview *model.InterviewDo, participants []model.InterviewParticipantDo) error {
	copied := *interview
	m.interviews[interview.ID] = &copied
	m.participants[interview.ID] = participants
	return nil
}

func (m *memStore) Get(xl *xlog.Logger, interviewID string) (*model.InterviewDo, error) {
	interview, ok := m.interviews[interviewID]
	if !ok {
		return nil, errors.New(errors.ServerErrorInterviewNotFound, "no such interview")
	}
	copied := *interview
	return &copied, nil
}

func (m *memStore) Update(xl *xlog.Logger, interview *model.InterviewDo) error {
	copied := *interview
	m.interviews[interview.ID] = &copied
	return nil
}

func (m *memStore) ListActiveByApplication(xl *xlog.Logger, applicationID string) ([]model.InterviewDo, error) {
	result := make([]model.InterviewDo, 0)
	for _, interview := range m.interviews {
		if interview.ApplicationID == applicationID && interview.Active {
			result = append(result, *interview)
		}
	}
	return result, nil
}

func (m *memStore) ListScheduledByParticipant(xl *xlog.Logger, userID string) ([]model.InterviewDo, error) {
	if m.listErr {
		return nil, fmt.Errorf("storage down")
	}
	result := make([]model.InterviewDo, 0)
	for interviewID, participants := range m.participants {
		for _, p := range participants {
			if p.UserID != userID {
				continue
			}
			if interview, ok := m.interviews[interviewID]; ok && interview.Active && interview.Status == model.InterviewStatusCodeScheduled {
				result = append(result, *interview)
			}
		}
	}
	return result, nil
}

func (m *memStore) Participants(xl *xlog.Logger, interviewID string) ([]model.InterviewParticipantDo, error) {
	return m.participants[interviewID], nil
}

func (m *memStore) GetApplication(xl *xlog.Logger, applicationID string) (*model.ApplicationDo, error) {
	application, ok := m.applications[applicationID]
	if !ok {
		return nil, errors.New(errors.ServerErrorApplicationNotFound, "no such application")
	}
	copied := *application
	return &copied, nil
}

func (m *memStore) UpdateStatus(xl *xlog.Logger, applicationID string, status model.ApplicationStatus, actorID, comment string) error {
	application, ok := m.applications[applicationID]
	if !ok {
		return errors.New(errors.ServerErrorApplicationNotFound, "no such application")
	}
	application.Status = status
	m.statusUpdates = append(m.statusUpdates, fmt.Sprintf("%s:%s", applicationID, status))
	return nil
}

func (m *memStore) ResolveUser(xl *xlog.Logger, userID string) (*model.UserInfo, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, errors.New(errors.ServerErrorUserNotFound, "no such user")
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetRoles(xl *xlog.Logger, userID string) ([]string, error) {
	if m.rolesErr {
		return nil, fmt.Errorf("directory down")
	}
	return m.roles[userID], nil
}

func (m *memStore) Insert(xl *xlog.Logger, evaluation *model.EvaluationDo) error {
	if _, ok := m.evaluations[evaluation.ID]; ok {
		return errors.New(errors.ServerErrorEvaluationAlreadyExists, "evaluation already exists")
	}
	copied := *evaluation
	m.evaluations[evaluation.ID] = &copied
	return nil
}

func (m *memStore) GetEvaluation(xl *xlog.Logger, interviewID, evaluatorID string) (*model.EvaluationDo, error) {
	evaluation, ok := m.evaluations[interviewID+"_"+evaluatorID]
	if !ok {
		return nil, errors.New(errors.ServerErrorEvaluationNotFound, "no such evaluation")
	}
	copied := *evaluation
	return &copied, nil
}

func (m *memStore) ListByInterview(xl *xlog.Logger, interviewID string) ([]model.EvaluationDo, error) {
	result := make([]model.EvaluationDo, 0)
	for _, evaluation := range m.evaluations {
		if evaluation.InterviewID == interviewID {
			result = append(result, *evaluation)
		}
	}
	return result, nil
}

func (m *memStore) UpdateEvaluation(xl *xlog.Logger, evaluation *model.EvaluationDo) error {
	copied := *evaluation
	m.evaluations[evaluation.ID] = &copied
	return nil
}

// 接口名冲突的适配：memStore的方法名与接口不完全一致，用薄包装分别满足各接口。
type applicationRepo struct{ *memStore }

func (r applicationRepo) Get(xl *xlog.Logger, applicationID string) (*model.ApplicationDo, error) {
	return r.GetApplication(xl, applicationID)
}

type evaluationRepo struct{ *memStore }

func (r evaluationRepo) Get(xl *xlog.Logger, interviewID, evaluatorID string) (*model.EvaluationDo, error) {
	return r.GetEvaluation(xl, interviewID, evaluatorID)
}

func (r evaluationRepo) Update(xl *xlog.Logger, evaluation *model.EvaluationDo) error {
	return r.UpdateEvaluation(xl, evaluation)
}

type fakeMeetings struct {
	available bool
	fail      bool
	created   int
	cancelled []string
}

func (f *fakeMeetings) CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*Meeting, error) {
	if f.fail {
		return nil, fmt.Errorf("provider down")
	}
	f.created++
	id := fmt.Sprintf("meeting-%d", f.created)
	return &Meeting{ID: id, Link: "https://meet.example.com/" + id}, nil
}

func (f *fakeMeetings) CancelMeeting(xl *xlog.Logger, meetingID string) bool {
	f.cancelled = append(f.cancelled, meetingID)
	return true
}

func (f *fakeMeetings) IsAvailable() bool {
	return f.available
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) record(kind string, recipient model.UserInfo) error {
	f.sent = append(f.sent, kind+":"+recipient.ID)
	return nil
}

func (f *fakeNotifier) NotifyScheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return f.record("scheduled", recipient)
}

func (f *fakeNotifier) NotifyRescheduled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return f.record("rescheduled", recipient)
}

func (f *fakeNotifier) NotifyCancelled(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return f.record("cancelled", recipient)
}

func (f *fakeNotifier) NotifyReminder(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return f.record("reminder", recipient)
}

func (f *fakeNotifier) NotifyEvaluationDue(xl *xlog.Logger, recipient model.UserInfo, interview *model.InterviewDo, context map[string]string) error {
	return f.record("evaluation_due", recipient)
}

func (f *fakeNotifier) count(kind, recipientID string) int {
	n := 0
	for _, entry := range f.sent {
		if entry == kind+":"+recipientID {
			n++
		}
	}
	return n
}

// 2026-03-03 是周二，默认规则下 09:00-18:00 UTC 为工作时间。
var testNow = time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)

func newTestScheduler(store *memStore, meetings MeetingProvider, notifier NotificationSender) *Scheduler {
	s := NewScheduler(store, applicationRepo{store}, evaluationRepo{store}, store, meetings, notifier, NewRules(nil))
	s.now = func() time.Time { return testNow }
	s.detector.now = s.now
	s.slots.now = s.now
	s.slots.detector.now = s.now
	return s
}

func seedApplication(store *memStore, id, candidateID, recruiterID string, status model.ApplicationStatus) {
	store.applications[id] = &model.ApplicationDo{
		ID:          id,
		CandidateID: candidateID,
		RecruiterID: recruiterID,
		Status:      status,
	}
}

func seedUser(store *memStore, id, name string, roles ...string) {
	store.users[id] = &model.UserInfo{ID: id, Email: id + "@example.com", DisplayName: name}
	if len(roles) > 0 {
		store.roles[id] = roles
	}
}

func seedInterview(store *memStore, id, applicationID string, round int, start time.Time, durationMinutes int,
	status model.InterviewStatusCode, participantIDs ...string) *model.InterviewDo {
	interview := &model.InterviewDo{
		ID:              id,
		ApplicationID:   applicationID,
		Title:           "技术面",
		Type:            model.InterviewTypeTechnical,
		Round:           round,
		ScheduledStart:  start,
		DurationMinutes: durationMinutes,
		Mode:            model.InterviewModeOnline,
		Status:          status,
		Active:          true,
	}
	store.interviews[id] = interview
	participants := make([]model.InterviewParticipantDo, 0, len(participantIDs))
	for i, userID := range participantIDs {
		participants = append(participants, model.InterviewParticipantDo{
			ID:          id + "_" + userID,
			InterviewID: id,
			UserID:      userID,
			Role:        model.ParticipantRoleInterviewer,
			IsLead:      i == 0,
		})
	}
	store.participants[id] = participants
	return interview
}

func serverErrorCode(err error) int {
	serverErr, ok := err.(*errors.ServerError)
	if !ok {
		return 0
	}
	return serverErr.Code
}
