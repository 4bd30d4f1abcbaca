package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/form"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

// EvaluationApiHandler 面试评价相关接口。
type EvaluationApiHandler struct {
	Evaluation *scheduling.EvaluationService
}

func NewEvaluationApiHandler(evaluation *scheduling.EvaluationService) *EvaluationApiHandler {
	return &EvaluationApiHandler{Evaluation: evaluation}
}

func makeEvaluationResponse(evaluation *model.EvaluationDo) model.EvaluationResponse {
	return model.EvaluationResponse{
		ID:             evaluation.ID,
		InterviewID:    evaluation.InterviewID,
		EvaluatorID:    evaluation.EvaluatorID,
		Recommendation: string(evaluation.Recommendation),
		Rating:         evaluation.Rating,
		Strengths:      evaluation.Strengths,
		Concerns:       evaluation.Concerns,
		Comments:       evaluation.Comments,
		CreateTime:     evaluation.CreateTime.Unix(),
		UpdateTime:     evaluation.UpdateTime.Unix(),
	}
}

// SubmitEvaluation 提交或修改当前用户对一场面试的评价。
func (h *EvaluationApiHandler) SubmitEvaluation(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	args := form.EvaluationForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		xl.Infof("evaluation form validation failed, error %v", err)
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	req := scheduling.EvaluationRequest{
		InterviewID:    interviewID,
		EvaluatorID:    userID,
		Recommendation: model.Recommendation(args.Recommendation),
		Rating:         args.Rating,
		Strengths:      args.Strengths,
		Concerns:       args.Concerns,
		Comments:       args.Comments,
	}
	evaluation, err := h.Evaluation.SubmitEvaluation(xl, req)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("evaluation %s submitted by user %s", evaluation.ID, userID)
	model.NewSuccessResponse(makeEvaluationResponse(evaluation)).WithRequestID(requestID).Send(c)
}

// GetEvaluationSummary 获取一场面试的评价汇总。读路径失败时退化返回空汇总。
func (h *EvaluationApiHandler) GetEvaluationSummary(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	interviewID := c.Param("interviewId")
	resp := model.EvaluationSummaryResponse{
		InterviewID:  interviewID,
		AverageScore: h.Evaluation.GetAverageScore(xl, interviewID),
		Evaluations:  make([]model.EvaluationResponse, 0),
	}
	if overall := h.Evaluation.GetOverallRecommendation(xl, interviewID); overall != nil {
		resp.Recommendation = string(*overall)
		resp.Outcome = string(*overall)
	}
	evaluations, err := h.Evaluation.ListByInterview(xl, interviewID)
	if err != nil {
		xl.Errorf("failed to list evaluations of interview %s, error %v", interviewID, err)
	} else {
		for i := range evaluations {
			resp.Evaluations = append(resp.Evaluations, makeEvaluationResponse(&evaluations[i]))
		}
	}
	model.NewSuccessResponse(resp).WithRequestID(requestID).Send(c)
}
