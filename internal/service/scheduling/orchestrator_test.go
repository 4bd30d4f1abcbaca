package scheduling

import (
	"testing"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

func scheduleRequest(applicationID string, start time.Time, participantIDs ...string) ScheduleRequest {
	return ScheduleRequest{
		ActorID:         "rec1",
		ApplicationID:   applicationID,
		Title:           "技术一面",
		Type:            model.InterviewTypeTechnical,
		Mode:            model.InterviewModeOnline,
		Start:           start,
		DurationMinutes: 60,
		ParticipantIDs:  participantIDs,
	}
}

func TestScheduleHappyPath(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "u2", "李娜")
	seedUser(store, "cand1", "王强")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	meetings := &fakeMeetings{available: true}
	notifier := &fakeNotifier{}
	scheduler := newTestScheduler(store, meetings, notifier)

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	interview, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1", "u2"))
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if interview.Round != 1 {
		t.Errorf("round=%d, want 1", interview.Round)
	}
	if interview.Status != model.InterviewStatusCodeScheduled {
		t.Errorf("status=%s, want scheduled", interview.Status.Name())
	}
	if interview.MeetingLink == "" || interview.MeetingLink == PlaceholderMeetingLink {
		t.Errorf("meeting link=%q, want a provisioned link", interview.MeetingLink)
	}
	if store.applications["app1"].Status != model.ApplicationStatusInterview {
		t.Errorf("application status=%s, want interview after the first schedule", store.applications["app1"].Status)
	}
	participants := store.participants[interview.ID]
	if len(participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(participants))
	}
	if !participants[0].IsLead || participants[0].Role != model.ParticipantRolePrimary {
		t.Errorf("first participant must default to lead primary interviewer, got %+v", participants[0])
	}
	if participants[1].IsLead || participants[1].Role != model.ParticipantRoleInterviewer {
		t.Errorf("second participant must be a plain interviewer, got %+v", participants[1])
	}
	for _, recipient := range []string{"u1", "u2", "cand1"} {
		if notifier.count("scheduled", recipient) != 1 {
			t.Errorf("%s missing schedule notification, sent=%v", recipient, notifier.sent)
		}
	}
}

func TestScheduleRejectsBadSlots(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	cases := []struct {
		name     string
		start    time.Time
		duration int
	}{
		{"周六", time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), 60},
		{"提前量不足", testNow.Add(30 * time.Minute), 60},
		{"超出工作时间", time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC), 60},
		{"时长越界", time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), 481},
	}
	for _, c := range cases {
		req := scheduleRequest("app1", c.start, "u1")
		req.DurationMinutes = c.duration
		if _, err := scheduler.Schedule(nil, req); !errors.IsValidation(err) {
			t.Errorf("%s: want validation error, got %v", c.name, err)
		}
	}
}

func TestScheduleRejectsUnschedulableApplication(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusRejected)
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if _, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1")); !errors.IsInvalidState(err) {
		t.Errorf("rejected application must not be schedulable, got %v", err)
	}
	if _, err := scheduler.Schedule(nil, scheduleRequest("missing", start, "u1")); !errors.IsNotFound(err) {
		t.Errorf("unknown application must be not found, got %v", err)
	}
}

func TestSchedulePendingInterviewBlocksAnother(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "u2", "李娜")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusInterview)
	seedInterview(store, "iv1", "app1", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	// 即使换一批参与者，同一投递单已有未完成排期时也不允许再排。
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u2"))
	if serverErrorCode(err) != errors.ServerErrorPendingInterviewExists {
		t.Errorf("pending interview must block another schedule, got %v", err)
	}
}

func TestScheduleParticipantConflict(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	seedApplication(store, "app2", "cand2", "rec1", model.ApplicationStatusInterview)
	busy := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	seedInterview(store, "iv1", "app2", 1, busy, 60, model.InterviewStatusCodeScheduled, "u1")
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	// 10:30与已有10:00-11:00重叠；11:00落在结束后的15分钟缓冲内。
	for _, start := range []time.Time{busy.Add(30 * time.Minute), busy.Add(60 * time.Minute)} {
		_, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1"))
		if serverErrorCode(err) != errors.ServerErrorScheduleConflict {
			t.Errorf("start %s: want schedule conflict, got %v", start, err)
		}
	}
	// 缓冲期过后可以正常排期。
	if _, err := scheduler.Schedule(nil, scheduleRequest("app1", busy.Add(75*time.Minute), "u1")); err != nil {
		t.Errorf("start after the buffer must succeed, got %v", err)
	}
}

func TestScheduleUnknownParticipantAndLead(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if _, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1", "ghost")); !errors.IsNotFound(err) {
		t.Errorf("unknown participant must be not found, got %v", err)
	}
	req := scheduleRequest("app1", start, "u1")
	req.LeadID = "u9"
	if _, err := scheduler.Schedule(nil, req); !errors.IsValidation(err) {
		t.Errorf("lead outside the participant list must be rejected, got %v", err)
	}
}

func TestScheduleMeetingProviderDownFallsBack(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "cand1", "王强")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	meetings := &fakeMeetings{available: true, fail: true}
	scheduler := newTestScheduler(store, meetings, &fakeNotifier{})

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	interview, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1"))
	if err != nil {
		t.Fatalf("provider failure must not fail scheduling: %v", err)
	}
	if interview.MeetingLink != PlaceholderMeetingLink {
		t.Errorf("meeting link=%q, want the placeholder", interview.MeetingLink)
	}
}

func TestScheduleRoundProgression(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "cand1", "王强")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusUnderReview)
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-72*time.Hour), 60,
		model.InterviewStatusCodeCompleted, "u1")
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	interview, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1"))
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if interview.Round != 2 {
		t.Errorf("round=%d, want 2 after round 1 completed", interview.Round)
	}
	// 非首场排期不再改动投递单状态。
	if store.applications["app1"].Status != model.ApplicationStatusUnderReview {
		t.Errorf("application status=%s, must stay under_review", store.applications["app1"].Status)
	}
}

func TestGetOverallOutcome(t *testing.T) {
	store := newMemStore()
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusUnderReview)
	iv1 := seedInterview(store, "iv1", "app1", 1, testNow.Add(-72*time.Hour), 60,
		model.InterviewStatusCodeCompleted, "u1")
	iv1.Outcome = model.OutcomePass
	iv2 := seedInterview(store, "iv2", "app1", 2, testNow.Add(-24*time.Hour), 60,
		model.InterviewStatusCodeCompleted, "u1")
	iv2.Outcome = model.OutcomePass
	scheduler := newTestScheduler(store, &fakeMeetings{}, &fakeNotifier{})

	outcome, err := scheduler.GetOverallOutcome(nil, "app1")
	if err != nil {
		t.Fatalf("overall outcome failed: %v", err)
	}
	if outcome != model.OutcomePass {
		t.Errorf("outcome=%s, want pass", outcome)
	}

	iv2.Outcome = model.OutcomeFail
	outcome, err = scheduler.GetOverallOutcome(nil, "app1")
	if err != nil {
		t.Fatalf("overall outcome failed: %v", err)
	}
	if outcome != model.OutcomeFail {
		t.Errorf("outcome=%s, want fail", outcome)
	}

	if _, err := scheduler.GetOverallOutcome(nil, "missing"); !errors.IsNotFound(err) {
		t.Errorf("unknown application must be not found, got %v", err)
	}
}

// 端到端：排期、完成、双人评价、聚合到投递单结论。
func TestSchedulingEndToEnd(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "u2", "李娜")
	seedUser(store, "cand1", "王强")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusShortlisted)
	meetings := &fakeMeetings{available: true}
	notifier := &fakeNotifier{}
	scheduler := newTestScheduler(store, meetings, notifier)
	evaluations := NewEvaluationService(evaluationRepo{store}, store, NewRules(nil))

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	interview, err := scheduler.Schedule(nil, scheduleRequest("app1", start, "u1", "u2"))
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// 面试开始20分钟后登记完成。
	clock := start.Add(20 * time.Minute)
	scheduler.now = func() time.Time { return clock }
	evaluations.now = scheduler.now
	if _, err := scheduler.Complete(nil, "u1", interview.ID, ""); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	xl := xlog.New("end-to-end-test")
	rating1, rating2 := 8.5, 7.5
	if _, err := evaluations.SubmitEvaluation(xl, EvaluationRequest{
		InterviewID: interview.ID, EvaluatorID: "u1",
		Recommendation: model.RecommendationPass, Rating: &rating1,
	}); err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}
	if _, err := evaluations.SubmitEvaluation(xl, EvaluationRequest{
		InterviewID: interview.ID, EvaluatorID: "u2",
		Recommendation: model.RecommendationPass, Rating: &rating2,
	}); err != nil {
		t.Fatalf("second evaluation failed: %v", err)
	}

	if store.interviews[interview.ID].Outcome != model.OutcomePass {
		t.Errorf("interview outcome=%s, want pass", store.interviews[interview.ID].Outcome)
	}
	outcome, err := scheduler.GetOverallOutcome(nil, "app1")
	if err != nil {
		t.Fatalf("overall outcome failed: %v", err)
	}
	if outcome != model.OutcomePass {
		t.Errorf("application outcome=%s, want pass", outcome)
	}
	if !evaluations.IsProcessComplete(xl, "app1") {
		t.Error("process must be complete once every interview is decided")
	}
	if avg := evaluations.GetAverageScore(xl, interview.ID); avg != 8.0 {
		t.Errorf("average score=%f, want 8.0", avg)
	}
}
