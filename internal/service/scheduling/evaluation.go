package scheduling

import (
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
)

// InterviewOutcome 把一场面试的全部评价结论聚合为单一结论。
// 严格多数Fail判负；全体Pass判胜；其余情况（全Maybe、Pass/Maybe混合、
// Fail未过半）为Pending，留待人工复核。偶数评价人恰好对半的Fail不算多数。
func InterviewOutcome(recommendations []model.Recommendation) model.Outcome {
	if len(recommendations) == 0 {
		return model.OutcomePending
	}
	failCount := 0
	passCount := 0
	for _, rec := range recommendations {
		switch rec {
		case model.RecommendationFail:
			failCount++
		case model.RecommendationPass:
			passCount++
		}
	}
	if failCount*2 > len(recommendations) {
		return model.OutcomeFail
	}
	if passCount == len(recommendations) {
		return model.OutcomePass
	}
	return model.OutcomePending
}

// OverallOutcome 把投递单下全部已完成且已有结论的面试聚合为总结论。
// 没有已完成带结论的面试时为Pending；任一Fail即整体Fail；全部Pass才是Pass。
func OverallOutcome(interviews []model.InterviewDo) model.Outcome {
	decided := 0
	passed := 0
	for _, interview := range interviews {
		if !interview.Active || interview.Status != model.InterviewStatusCodeCompleted {
			continue
		}
		switch interview.Outcome {
		case model.OutcomeFail:
			return model.OutcomeFail
		case model.OutcomePass:
			decided++
			passed++
		case model.OutcomePending:
			decided++
		}
	}
	if decided == 0 {
		return model.OutcomePending
	}
	if passed == decided {
		return model.OutcomePass
	}
	return model.OutcomePending
}

// ProcessComplete 投递单的面试流程是否已全部结束：
// 每一场面试都已完成且结论不为Pending。没有面试时视为未结束。
func ProcessComplete(interviews []model.InterviewDo) bool {
	count := 0
	for _, interview := range interviews {
		if !interview.Active {
			continue
		}
		count++
		if interview.Status != model.InterviewStatusCodeCompleted {
			return false
		}
		if interview.Outcome == model.OutcomeNone || interview.Outcome == model.OutcomePending {
			return false
		}
	}
	return count > 0
}

// EvaluationService 评价的提交、修改与汇总查询。
type EvaluationService struct {
	evaluations EvaluationRepository
	interviews  InterviewRepository
	rules       Rules
	now         func() time.Time
	xl          *xlog.Logger
}

func NewEvaluationService(evaluations EvaluationRepository, interviews InterviewRepository, rules Rules) *EvaluationService {
	return &EvaluationService{
		evaluations: evaluations,
		interviews:  interviews,
		rules:       rules,
		now:         time.Now,
		xl:          xlog.New("hire-cube-evaluation"),
	}
}

// EvaluationRequest 一次评价提交。
type EvaluationRequest struct {
	InterviewID    string
	EvaluatorID    string
	Recommendation model.Recommendation
	Rating         *float64
	Strengths      string
	Concerns       string
	Comments       string
}

// SubmitEvaluation 提交或修改评价。仅已完成面试的当前参与者可提交；
// 每人至多一条；修改只允许作者本人在提交后的编辑窗口内进行。
// 当全部参与者都已提交时同步聚合面试结论，重复聚合结果一致。
func (s *EvaluationService) SubmitEvaluation(xl *xlog.Logger, req EvaluationRequest) (*model.EvaluationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.interviews.Get(xl, req.InterviewID)
	if err != nil {
		return nil, err
	}
	if !interview.Active {
		return nil, errors.New(errors.ServerErrorInterviewNotFound, "no such interview")
	}
	if interview.Status != model.InterviewStatusCodeCompleted {
		return nil, errInvalidState("evaluations can only be submitted for completed interviews")
	}
	participants, err := s.interviews.Participants(xl, req.InterviewID)
	if err != nil {
		xl.Errorf("failed to load participants of interview %s, deny, error %v", req.InterviewID, err)
		return nil, errNoPermission("no permission")
	}
	isParticipant := false
	for _, p := range participants {
		if p.UserID == req.EvaluatorID {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return nil, errNoPermission("only interview participants can submit evaluations")
	}

	evaluation, err := s.evaluations.Get(xl, req.InterviewID, req.EvaluatorID)
	if err != nil && !errors.IsNotFound(err) {
		xl.Errorf("failed to load evaluation of interview %s by %s, error %v", req.InterviewID, req.EvaluatorID, err)
		return nil, err
	}
	if evaluation != nil {
		if s.now().After(evaluation.CreateTime.Add(s.rules.EvaluationEdit)) {
			return nil, errors.New(errors.ServerErrorEvaluationClosed,
				fmt.Sprintf("evaluation can only be edited within %d days", int(s.rules.EvaluationEdit.Hours()/24)))
		}
		evaluation.Recommendation = req.Recommendation
		evaluation.Rating = req.Rating
		evaluation.Strengths = req.Strengths
		evaluation.Concerns = req.Concerns
		evaluation.Comments = req.Comments
		evaluation.UpdateTime = s.now()
		if err := s.evaluations.Update(xl, evaluation); err != nil {
			xl.Errorf("failed to update evaluation %s, error %v", evaluation.ID, err)
			return nil, err
		}
	} else {
		evaluation = &model.EvaluationDo{
			ID:             req.InterviewID + "_" + req.EvaluatorID,
			InterviewID:    req.InterviewID,
			EvaluatorID:    req.EvaluatorID,
			Recommendation: req.Recommendation,
			Rating:         req.Rating,
			Strengths:      req.Strengths,
			Concerns:       req.Concerns,
			Comments:       req.Comments,
			CreateTime:     s.now(),
			UpdateTime:     s.now(),
		}
		if err := s.evaluations.Insert(xl, evaluation); err != nil {
			xl.Errorf("failed to insert evaluation %s, error %v", evaluation.ID, err)
			return nil, err
		}
	}
	xl.Infof("evaluation for interview %s submitted by %s: %s", req.InterviewID, req.EvaluatorID, req.Recommendation)

	s.recomputeOutcome(xl, interview, participants)
	return evaluation, nil
}

// recomputeOutcome 当每个参与者都恰好有一条评价时写回面试结论。
// 结论只在尚未赋值时写入，重复触发不改变结果。
func (s *EvaluationService) recomputeOutcome(xl *xlog.Logger, interview *model.InterviewDo, participants []model.InterviewParticipantDo) {
	evaluations, err := s.evaluations.ListByInterview(xl, interview.ID)
	if err != nil {
		xl.Errorf("failed to list evaluations of interview %s, skip outcome aggregation, error %v", interview.ID, err)
		return
	}
	if len(evaluations) < len(participants) {
		return
	}
	submitted := make(map[string]model.Recommendation, len(evaluations))
	for _, evaluation := range evaluations {
		submitted[evaluation.EvaluatorID] = evaluation.Recommendation
	}
	recommendations := make([]model.Recommendation, 0, len(participants))
	for _, p := range participants {
		rec, ok := submitted[p.UserID]
		if !ok {
			return
		}
		recommendations = append(recommendations, rec)
	}
	outcome := InterviewOutcome(recommendations)
	if interview.Outcome == outcome {
		return
	}
	if interview.Outcome != model.OutcomeNone {
		xl.Warnf("interview %s outcome already set to %s, keep it", interview.ID, interview.Outcome)
		return
	}
	interview.Outcome = outcome
	interview.UpdateTime = s.now()
	if err := s.interviews.Update(xl, interview); err != nil {
		xl.Errorf("failed to set outcome of interview %s, error %v", interview.ID, err)
		return
	}
	xl.Infof("interview %s outcome aggregated to %s from %d evaluations", interview.ID, outcome, len(recommendations))
}

// GetAverageScore 计算一场面试的平均评分。
// 查询失败或尚无评分时返回0.0，查询路径不抛错。
func (s *EvaluationService) GetAverageScore(xl *xlog.Logger, interviewID string) float64 {
	if xl == nil {
		xl = s.xl
	}
	evaluations, err := s.evaluations.ListByInterview(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to list evaluations of interview %s, return 0, error %v", interviewID, err)
		return 0.0
	}
	sum := 0.0
	count := 0
	for _, evaluation := range evaluations {
		if evaluation.Rating != nil {
			sum += *evaluation.Rating
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// GetOverallRecommendation 返回一场面试的聚合结论。
// 评价未齐或查询失败时返回nil。
func (s *EvaluationService) GetOverallRecommendation(xl *xlog.Logger, interviewID string) *model.Outcome {
	if xl == nil {
		xl = s.xl
	}
	participants, err := s.interviews.Participants(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to load participants of interview %s, error %v", interviewID, err)
		return nil
	}
	evaluations, err := s.evaluations.ListByInterview(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to list evaluations of interview %s, error %v", interviewID, err)
		return nil
	}
	if len(evaluations) < len(participants) || len(participants) == 0 {
		return nil
	}
	recommendations := make([]model.Recommendation, 0, len(evaluations))
	for _, evaluation := range evaluations {
		recommendations = append(recommendations, evaluation.Recommendation)
	}
	outcome := InterviewOutcome(recommendations)
	return &outcome
}

// IsProcessComplete 投递单的面试流程是否已全部结束。查询失败时返回false。
func (s *EvaluationService) IsProcessComplete(xl *xlog.Logger, applicationID string) bool {
	if xl == nil {
		xl = s.xl
	}
	interviews, err := s.interviews.ListActiveByApplication(xl, applicationID)
	if err != nil {
		xl.Errorf("failed to list interviews of application %s, error %v", applicationID, err)
		return false
	}
	return ProcessComplete(interviews)
}

// ListByInterview 返回一场面试的全部评价，供查询接口使用。
func (s *EvaluationService) ListByInterview(xl *xlog.Logger, interviewID string) ([]model.EvaluationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	return s.evaluations.ListByInterview(xl, interviewID)
}
