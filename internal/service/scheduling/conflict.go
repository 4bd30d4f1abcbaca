package scheduling

import (
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

// InterviewSource 冲突检测读取的既有排期来源，通常由InterviewRepository满足。
type InterviewSource interface {
	ListScheduledByParticipant(xl *xlog.Logger, userID string) ([]model.InterviewDo, error)
}

// ConflictDetector 判断一个候选时间窗是否与参与者的既有排期重叠。
type ConflictDetector struct {
	source InterviewSource
	buffer time.Duration
	now    func() time.Time
	xl     *xlog.Logger
}

func NewConflictDetector(source InterviewSource, rules Rules) *ConflictDetector {
	return &ConflictDetector{
		source: source,
		buffer: rules.Buffer,
		now:    time.Now,
		xl:     xlog.New("hire-cube-conflict-detector"),
	}
}

// Overlaps 带缓冲的区间重叠判断。缓冲只加在已有面试的结束侧：
// 新排期可以紧贴在已有面试开始之前，但不能在其结束后的缓冲期内开始。
func Overlaps(proposedStart, proposedEnd, existingStart, existingEnd time.Time, buffer time.Duration) bool {
	return proposedStart.Before(existingEnd.Add(buffer)) && proposedEnd.After(existingStart)
}

// HasConflict 检查参与者在[start, start+duration)内是否已有排期。
// excludeInterviewID用于改期时排除当前面试自身。
// 查询失败时按有冲突处理，绝不因查询失败放行重复排期。
func (d *ConflictDetector) HasConflict(xl *xlog.Logger, participantID string, start time.Time, durationMinutes int, excludeInterviewID string) bool {
	if xl == nil {
		xl = d.xl
	}
	existing, err := d.source.ListScheduledByParticipant(xl, participantID)
	if err != nil {
		xl.Errorf("failed to list interviews of participant %s, report conflict, error %v", participantID, err)
		return true
	}
	return d.ConflictsWith(existing, start, durationMinutes, excludeInterviewID)
}

// ConflictsWith 在一份已取回的排期快照上执行同样的检查，
// 供时间槽生成等需要对多个候选时间复用同一快照的调用方使用。
func (d *ConflictDetector) ConflictsWith(existing []model.InterviewDo, start time.Time, durationMinutes int, excludeInterviewID string) bool {
	now := d.now()
	proposedEnd := start.Add(time.Duration(durationMinutes) * time.Minute)
	for _, interview := range existing {
		if !interview.Active || interview.Status != model.InterviewStatusCodeScheduled {
			continue
		}
		if interview.ID == excludeInterviewID {
			continue
		}
		if !interview.End().After(now) {
			continue
		}
		if Overlaps(start, proposedEnd, interview.ScheduledStart, interview.End(), d.buffer) {
			return true
		}
	}
	return false
}
