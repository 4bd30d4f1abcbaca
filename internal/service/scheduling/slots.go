package scheduling

import (
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

// Slot 一个候选时间槽与参与者可用性分类。
type Slot struct {
	Start time.Time
	End   time.Time
	// Available/Unavailable 参与者显示名。
	Available   []string
	Unavailable []string
}

// SlotGenerator 在工作日/工作时间内枚举候选时间槽。
type SlotGenerator struct {
	source    InterviewSource
	directory ParticipantDirectory
	detector  *ConflictDetector
	rules     Rules
	now       func() time.Time
	xl        *xlog.Logger
}

func NewSlotGenerator(source InterviewSource, directory ParticipantDirectory, rules Rules) *SlotGenerator {
	return &SlotGenerator{
		source:    source,
		directory: directory,
		detector:  NewConflictDetector(source, rules),
		rules:     rules,
		now:       time.Now,
		xl:        xlog.New("hire-cube-slot-generator"),
	}
}

type participantCalendar struct {
	userID string
	name   string
	// interviews 该参与者既有排期的一次性快照；fetchFailed时一律视为不可用。
	interviews  []model.InterviewDo
	fetchFailed bool
}

// Generate 枚举[rangeStart, rangeEnd]内的全部候选时间槽。
// 周六周日跳过；起点按固定步长推进；槽必须完整落在工作时间内，
// 且距当前时间不少于最短提前量；至少一名参与者可用的槽才会被输出。
func (g *SlotGenerator) Generate(xl *xlog.Logger, participantIDs []string, rangeStart, rangeEnd time.Time, durationMinutes int) ([]Slot, error) {
	if xl == nil {
		xl = g.xl
	}
	calendars := make([]participantCalendar, 0, len(participantIDs))
	for _, userID := range participantIDs {
		user, err := g.directory.ResolveUser(xl, userID)
		if err != nil {
			xl.Infof("cannot resolve participant %s, error %v", userID, err)
			return nil, err
		}
		calendar := participantCalendar{userID: userID, name: user.DisplayName}
		calendar.interviews, err = g.source.ListScheduledByParticipant(xl, userID)
		if err != nil {
			xl.Errorf("failed to list interviews of participant %s, mark unavailable, error %v", userID, err)
			calendar.fetchFailed = true
		}
		calendars = append(calendars, calendar)
	}

	earliest := g.now().Add(g.rules.AdvanceNotice)
	duration := time.Duration(durationMinutes) * time.Minute
	slots := make([]Slot, 0)

	day := time.Date(rangeStart.In(g.rules.Location).Year(), rangeStart.In(g.rules.Location).Month(), rangeStart.In(g.rules.Location).Day(), 0, 0, 0, 0, g.rules.Location)
	for !day.After(rangeEnd.In(g.rules.Location)) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			dayStart := day.Add(time.Duration(g.rules.BusinessStartHour) * time.Hour)
			dayEnd := day.Add(time.Duration(g.rules.BusinessEndHour) * time.Hour)
			for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(g.rules.SlotStride) {
				startUTC := start.UTC()
				if startUTC.Before(earliest) {
					continue
				}
				if startUTC.Before(rangeStart) || startUTC.Add(duration).After(rangeEnd) {
					continue
				}
				slot := Slot{Start: startUTC, End: startUTC.Add(duration)}
				for _, calendar := range calendars {
					if calendar.fetchFailed || g.detector.ConflictsWith(calendar.interviews, startUTC, durationMinutes, "") {
						slot.Unavailable = append(slot.Unavailable, calendar.name)
					} else {
						slot.Available = append(slot.Available, calendar.name)
					}
				}
				if len(slot.Available) > 0 {
					slots = append(slots, slot)
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	xl.Debugf("generated %d slots for %d participants between %s and %s", len(slots), len(participantIDs), rangeStart, rangeEnd)
	return slots, nil
}
