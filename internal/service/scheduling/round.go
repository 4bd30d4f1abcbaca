package scheduling

import (
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// NextRound 由投递单的既有面试推导新面试的轮次。
// 无面试时为第1轮；最高轮次中有已完成的面试时进入下一轮；
// 否则仍在当前轮补充排期（例如同轮加面）。
func NextRound(interviews []model.InterviewDo) int {
	maxRound := 0
	maxRoundCompleted := false
	for _, interview := range interviews {
		if !interview.Active {
			continue
		}
		if interview.Round > maxRound {
			maxRound = interview.Round
			maxRoundCompleted = interview.Status == model.InterviewStatusCodeCompleted
		} else if interview.Round == maxRound && interview.Status == model.InterviewStatusCodeCompleted {
			maxRoundCompleted = true
		}
	}
	if maxRound == 0 {
		return 1
	}
	if maxRoundCompleted {
		return maxRound + 1
	}
	return maxRound
}
