package form

import (
	"testing"
)

func validScheduleForm() InterviewScheduleForm {
	return InterviewScheduleForm{
		ApplicationID:   "app1",
		Title:           "二面",
		Type:            "technical",
		Mode:            "online",
		ScheduledStart:  1772530200,
		DurationMinutes: 60,
		ParticipantIDs:  []string{"u1", "u2"},
	}
}

func TestInterviewScheduleFormValidate(t *testing.T) {
	form := validScheduleForm()
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(*InterviewScheduleForm)
	}{
		{"missing application", func(f *InterviewScheduleForm) { f.ApplicationID = "" }},
		{"missing title", func(f *InterviewScheduleForm) { f.Title = "" }},
		{"unknown type", func(f *InterviewScheduleForm) { f.Type = "casual" }},
		{"unknown mode", func(f *InterviewScheduleForm) { f.Mode = "telepathy" }},
		{"missing start", func(f *InterviewScheduleForm) { f.ScheduledStart = 0 }},
		{"zero duration", func(f *InterviewScheduleForm) { f.DurationMinutes = 0 }},
		{"overlong duration", func(f *InterviewScheduleForm) { f.DurationMinutes = 481 }},
		{"no participants", func(f *InterviewScheduleForm) { f.ParticipantIDs = nil }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			form := validScheduleForm()
			testCase.mutate(&form)
			if err := form.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestSlotQueryFormValidate(t *testing.T) {
	form := SlotQueryForm{
		ParticipantIDs:  []string{"u1"},
		RangeStart:      1772530200,
		RangeEnd:        1772616600,
		DurationMinutes: 60,
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	form.RangeEnd = form.RangeStart
	if err := form.Validate(); err == nil {
		t.Fatal("expected error for empty range, got nil")
	}
}

func TestEvaluationFormValidate(t *testing.T) {
	rating := 7.5
	form := EvaluationForm{
		Recommendation: "pass",
		Rating:         &rating,
		Strengths:      "扎实的基础",
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	form.Recommendation = "strong_hire"
	if err := form.Validate(); err == nil {
		t.Fatal("expected error for unknown recommendation, got nil")
	}

	form.Recommendation = "pass"
	badRating := 10.5
	form.Rating = &badRating
	if err := form.Validate(); err == nil {
		t.Fatal("expected error for out of range rating, got nil")
	}
}

func TestSignInFormValidate(t *testing.T) {
	form := SignInForm{Email: "zhangwei@example.com", Nickname: "张伟"}
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	form.Email = "not-an-email"
	if err := form.Validate(); err == nil {
		t.Fatal("expected error for malformed email, got nil")
	}
}
