package scheduling

import (
	"testing"
	"time"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

func newTestSlotGenerator(store *memStore) *SlotGenerator {
	generator := NewSlotGenerator(store, store, NewRules(nil))
	generator.now = func() time.Time { return testNow }
	generator.detector.now = generator.now
	return generator
}

func TestGenerateSkipsWeekends(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	generator := newTestSlotGenerator(store)

	// 2026-03-07/08 是周六周日。
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1"}, saturday, saturday.AddDate(0, 0, 2), 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("weekend-only range produced %d slots, want 0", len(slots))
	}
}

func TestGenerateRespectsBusinessHoursAndStride(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	generator := newTestSlotGenerator(store)

	// 周三全天，60分钟时长：09:00起每30分钟一个槽，最后一个17:00。
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1"}, day, day.AddDate(0, 0, 1), 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(slots) != 17 {
		t.Fatalf("got %d slots, want 17", len(slots))
	}
	first := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(first) {
		t.Errorf("first slot starts at %s, want %s", slots[0].Start, first)
	}
	if !slots[len(slots)-1].Start.Equal(last) {
		t.Errorf("last slot starts at %s, want %s", slots[len(slots)-1].Start, last)
	}
}

func TestGenerateDurationTooLongForBusinessDay(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	generator := newTestSlotGenerator(store)

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1"}, day, day.AddDate(0, 0, 1), 600)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("10h duration cannot fit a 9h business day, got %d slots", len(slots))
	}
}

func TestGenerateEnforcesAdvanceNotice(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	generator := newTestSlotGenerator(store)
	// 当前时间为周二09:30，10:30之前开始的槽都不满足1小时提前量。
	generator.now = func() time.Time { return time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC) }

	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1"}, day, day.AddDate(0, 0, 1), 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots for the rest of the business day")
	}
	expected := time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC)
	if !slots[0].Start.Equal(expected) {
		t.Errorf("first slot starts at %s, want %s", slots[0].Start, expected)
	}
}

func TestGenerateClassifiesParticipants(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	seedUser(store, "u2", "李娜")
	seedApplication(store, "app1", "cand1", "rec1", model.ApplicationStatusInterview)
	// u1 在周三10:00-11:00已有排期，缓冲覆盖到11:15。
	seedInterview(store, "iv1", "app1", 1, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), 60,
		model.InterviewStatusCodeScheduled, "u1")
	generator := newTestSlotGenerator(store)

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1", "u2"}, day, day.AddDate(0, 0, 1), 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	bySlot := make(map[string]Slot, len(slots))
	for _, slot := range slots {
		bySlot[slot.Start.Format("15:04")] = slot
	}
	overlapping, ok := bySlot["10:30"]
	if !ok {
		t.Fatal("slot 10:30 missing, u2 is free then")
	}
	if len(overlapping.Available) != 1 || overlapping.Available[0] != "李娜" {
		t.Errorf("10:30 available=%v, want only 李娜", overlapping.Available)
	}
	if len(overlapping.Unavailable) != 1 || overlapping.Unavailable[0] != "张伟" {
		t.Errorf("10:30 unavailable=%v, want only 张伟", overlapping.Unavailable)
	}
	free, ok := bySlot["13:00"]
	if !ok {
		t.Fatal("slot 13:00 missing")
	}
	if len(free.Available) != 2 {
		t.Errorf("13:00 available=%v, want both participants", free.Available)
	}
	// 11:00的槽落在u1既有面试结束后的缓冲内。
	buffered, ok := bySlot["11:00"]
	if !ok {
		t.Fatal("slot 11:00 missing")
	}
	if len(buffered.Unavailable) != 1 || buffered.Unavailable[0] != "张伟" {
		t.Errorf("11:00 unavailable=%v, want 张伟 blocked by buffer", buffered.Unavailable)
	}
}

func TestGenerateCalendarFetchFailureMarksUnavailable(t *testing.T) {
	store := newMemStore()
	seedUser(store, "u1", "张伟")
	store.listErr = true
	generator := newTestSlotGenerator(store)

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	slots, err := generator.Generate(nil, []string{"u1"}, day, day.AddDate(0, 0, 1), 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("sole participant with unknown calendar must yield no slots, got %d", len(slots))
	}
}
