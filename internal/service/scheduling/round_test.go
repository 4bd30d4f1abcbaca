package scheduling

import (
	"testing"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

func TestNextRound(t *testing.T) {
	interview := func(round int, status model.InterviewStatusCode, active bool) model.InterviewDo {
		return model.InterviewDo{Round: round, Status: status, Active: active}
	}
	cases := []struct {
		name       string
		interviews []model.InterviewDo
		expected   int
	}{
		{"无面试从第1轮开始", nil, 1},
		{"首轮已完成进入第2轮", []model.InterviewDo{
			interview(1, model.InterviewStatusCodeCompleted, true),
		}, 2},
		{"首轮仍在排期中停留第1轮", []model.InterviewDo{
			interview(1, model.InterviewStatusCodeScheduled, true),
		}, 1},
		{"首轮取消后重新排第1轮", []model.InterviewDo{
			interview(1, model.InterviewStatusCodeCancelled, true),
		}, 1},
		{"同轮多场有一场完成即进入下一轮", []model.InterviewDo{
			interview(2, model.InterviewStatusCodeNoShow, true),
			interview(2, model.InterviewStatusCodeCompleted, true),
			interview(1, model.InterviewStatusCodeCompleted, true),
		}, 3},
		{"软删除的面试不参与推导", []model.InterviewDo{
			interview(3, model.InterviewStatusCodeCompleted, false),
			interview(1, model.InterviewStatusCodeCompleted, true),
		}, 2},
	}
	for _, c := range cases {
		if got := NextRound(c.interviews); got != c.expected {
			t.Errorf("%s: NextRound=%d, want %d", c.name, got, c.expected)
		}
	}
}
