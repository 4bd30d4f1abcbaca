package scheduling

import (
	"testing"
	"time"

	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

func lifecycleFixture() (*memStore, *fakeMeetings, *fakeNotifier, *Scheduler) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "u2", "李娜")
	seedUser(store, "cand1", "王强")
	seedUser(store, "hr1", "刘敏", "hr")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusInterview)
	meetings := &fakeMeetings{available: true}
	notifier := &fakeNotifier{}
	return store, meetings, notifier, newTestScheduler(store, meetings, notifier)
}

func TestCompleteTooEarly(t *testing.T) {
	store, _, _, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-5*time.Minute), 60,
		model.InterviewStatusCodeScheduled, "u1")

	_, err := scheduler.Complete(nil, "rec1", "iv1", "")
	if serverErrorCode(err) != errors.ServerErrorTooEarlyToComplete {
		t.Errorf("complete 5 minutes after start must be rejected, got %v", err)
	}
}

func TestCompletePropagatesAndNotifies(t *testing.T) {
	store, _, notifier, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-30*time.Minute), 60,
		model.InterviewStatusCodeScheduled, "u1", "u2")

	interview, err := scheduler.Complete(nil, "u1", "iv1", "candidate did well")
	if err != nil {
		t.Fatalf("participant completing after the delay failed: %v", err)
	}
	if interview.Status != model.InterviewStatusCodeCompleted {
		t.Errorf("status=%s, want completed", interview.Status.Name())
	}
	if store.applications["app1"].Status != model.ApplicationStatusUnderReview {
		t.Errorf("application status=%s, want under_review", store.applications["app1"].Status)
	}
	if notifier.count("evaluation_due", "u1") != 1 || notifier.count("evaluation_due", "u2") != 1 {
		t.Errorf("participants must be asked for evaluations, sent=%v", notifier.sent)
	}
	if notifier.count("evaluation_due", "cand1") != 0 {
		t.Error("candidate must not receive evaluation notifications")
	}
}

func TestMarkNoShowGraceAndSilence(t *testing.T) {
	store, _, notifier, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-10*time.Minute), 60,
		model.InterviewStatusCodeScheduled, "u1")

	_, err := scheduler.MarkNoShow(nil, "rec1", "iv1", "")
	if serverErrorCode(err) != errors.ServerErrorTooEarlyForNoShow {
		t.Errorf("no-show within the grace period must be rejected, got %v", err)
	}

	store.interviews["iv1"].ScheduledStart = testNow.Add(-20 * time.Minute)
	interview, err := scheduler.MarkNoShow(nil, "rec1", "iv1", "candidate unreachable")
	if err != nil {
		t.Fatalf("no-show after the grace period failed: %v", err)
	}
	if interview.Status != model.InterviewStatusCodeNoShow {
		t.Errorf("status=%s, want no-show", interview.Status.Name())
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no-show must not trigger notifications, sent=%v", notifier.sent)
	}
}

func TestCancelReleasesMeetingAndNotifiesCandidate(t *testing.T) {
	store, meetings, notifier, scheduler := lifecycleFixture()
	interview := seedInterview(store, "iv1", "app1", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	interview.MeetingID = "meeting-1"
	interview.MeetingLink = "https://meet.example.com/meeting-1"

	cancelled, err := scheduler.Cancel(nil, "rec1", "iv1", "position on hold")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != model.InterviewStatusCodeCancelled {
		t.Errorf("status=%s, want cancelled", cancelled.Status.Name())
	}
	if len(meetings.cancelled) != 1 || meetings.cancelled[0] != "meeting-1" {
		t.Errorf("meeting not released, cancelled=%v", meetings.cancelled)
	}
	if notifier.count("cancelled", "cand1") != 1 {
		t.Errorf("candidate must be told about the cancellation, sent=%v", notifier.sent)
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	store, _, _, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-2*time.Hour), 60,
		model.InterviewStatusCodeCompleted, "u1")

	if _, err := scheduler.Cancel(nil, "rec1", "iv1", "too late"); !errors.IsInvalidState(err) {
		t.Errorf("cancelling a completed interview must fail, got %v", err)
	}
	if _, err := scheduler.Reschedule(nil, "rec1", "iv1", testNow.Add(48*time.Hour), 0, "retry"); !errors.IsInvalidState(err) {
		t.Errorf("rescheduling a completed interview must fail, got %v", err)
	}
	if _, err := scheduler.MarkNoShow(nil, "rec1", "iv1", ""); !errors.IsInvalidState(err) {
		t.Errorf("marking a completed interview as no-show must fail, got %v", err)
	}
}

func TestAuthorizationDeniesOnDirectoryError(t *testing.T) {
	store, _, _, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	store.rolesErr = true

	_, err := scheduler.Cancel(nil, "someone", "iv1", "reason")
	if !errors.IsUnauthorized(err) {
		t.Errorf("role lookup failure must deny, got %v", err)
	}

	// 招聘负责人不依赖角色查询。
	if _, err := scheduler.Cancel(nil, "rec1", "iv1", "reason"); err != nil {
		t.Errorf("recruiter must stay authorized, got %v", err)
	}
}

func TestStaffRoleAuthorized(t *testing.T) {
	store, _, _, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")

	if _, err := scheduler.Cancel(nil, "hr1", "iv1", "req withdrawn"); err != nil {
		t.Errorf("hr staff must be authorized, got %v", err)
	}
	// 普通参与者不能取消排期。
	seedInterview(store, "iv2", "app1", 1, testNow.Add(72*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	if _, err := scheduler.Cancel(nil, "u1", "iv2", "cannot make it"); !errors.IsUnauthorized(err) {
		t.Errorf("plain participant must not cancel, got %v", err)
	}
}

func TestRescheduleChecksConflictsExcludingSelf(t *testing.T) {
	store, meetings, notifier, scheduler := lifecycleFixture()
	interview := seedInterview(store, "iv1", "app1", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	interview.MeetingID = "meeting-0"
	interview.Reminded = true

	// 改到自己原时段附近不算冲突。
	newStart := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	updated, err := scheduler.Reschedule(nil, "rec1", "iv1", newStart, 0, "interviewer travel")
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if !updated.ScheduledStart.Equal(newStart) {
		t.Errorf("start=%s, want %s", updated.ScheduledStart, newStart)
	}
	if updated.Reminded {
		t.Error("reminder flag must reset after reschedule")
	}
	if len(meetings.cancelled) != 1 {
		t.Errorf("old meeting must be released, cancelled=%v", meetings.cancelled)
	}
	if updated.MeetingID == "" || updated.MeetingID == "meeting-0" {
		t.Errorf("a fresh meeting must be provisioned, got %q", updated.MeetingID)
	}
	if notifier.count("rescheduled", "cand1") != 1 {
		t.Errorf("candidate must be told about the new time, sent=%v", notifier.sent)
	}

	// u1 在目标时段另有排期时改期被拒。
	seedApplication(store, "app2", "cand2", "rec1", model.ApplicationStatusInterview)
	seedInterview(store, "iv2", "app2", 1, newStart, 60, model.InterviewStatusCodeScheduled, "u1")
	seedApplication(store, "app3", "cand3", "rec1", model.ApplicationStatusInterview)
	seedInterview(store, "iv3", "app3", 1, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC), 60,
		model.InterviewStatusCodeScheduled, "u1")
	_, err = scheduler.Reschedule(nil, "rec1", "iv3", newStart.Add(30*time.Minute), 0, "clash")
	if serverErrorCode(err) != errors.ServerErrorScheduleConflict {
		t.Errorf("overlapping reschedule must conflict, got %v", err)
	}
}

func TestDeleteGuards(t *testing.T) {
	store, _, _, scheduler := lifecycleFixture()
	seedInterview(store, "iv1", "app1", 1, testNow.Add(-24*time.Hour), 60,
		model.InterviewStatusCodeCompleted, "u1")
	store.evaluations["iv1_u1"] = &model.EvaluationDo{
		ID: "iv1_u1", InterviewID: "iv1", EvaluatorID: "u1",
		Recommendation: model.RecommendationPass,
	}

	if err := scheduler.Delete(nil, "rec1", "iv1"); !errors.IsInvalidState(err) {
		t.Errorf("interview with evaluations must not be deleted, got %v", err)
	}

	// 面试中投递单的唯一一场面试不可删除。
	seedApplication(store, "app2", "cand2", "rec1", model.ApplicationStatusInterview)
	seedInterview(store, "iv2", "app2", 1, testNow.Add(48*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u1")
	if err := scheduler.Delete(nil, "rec1", "iv2"); !errors.IsInvalidState(err) {
		t.Errorf("sole interview of an in-interview application must not be deleted, got %v", err)
	}

	// 非唯一时软删除生效。
	seedInterview(store, "iv3", "app2", 1, testNow.Add(72*time.Hour), 60,
		model.InterviewStatusCodeScheduled, "u2")
	if err := scheduler.Delete(nil, "rec1", "iv3"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if store.interviews["iv3"].Active {
		t.Error("delete must clear the active flag")
	}
	if _, _, err := scheduler.GetInterview(nil, "iv3"); !errors.IsNotFound(err) {
		t.Errorf("deleted interview must read as not found, got %v", err)
	}
}
