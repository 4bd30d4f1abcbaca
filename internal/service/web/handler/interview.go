package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/protodef/form"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/db"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

// InterviewApiHandler 面试排期相关接口。
type InterviewApiHandler struct {
	Scheduler  *scheduling.Scheduler
	Evaluation *scheduling.EvaluationService
	Interview  *db.InterviewService
	Account    *db.AccountService
}

func NewInterviewApiHandler(scheduler *scheduling.Scheduler, evaluation *scheduling.EvaluationService,
	interview *db.InterviewService, account *db.AccountService) *InterviewApiHandler {
	return &InterviewApiHandler{
		Scheduler:  scheduler,
		Evaluation: evaluation,
		Interview:  interview,
		Account:    account,
	}
}

// makeParticipantResponses 填充参与者的展示信息，目录服务不可用时退化为仅返回用户ID。
func (h *InterviewApiHandler) makeParticipantResponses(xl *xlog.Logger, participants []model.InterviewParticipantDo) []model.ParticipantResponse {
	res := make([]model.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		item := model.ParticipantResponse{
			UserID: p.UserID,
			Role:   string(p.Role),
			IsLead: p.IsLead,
		}
		user, err := h.Account.ResolveUser(xl, p.UserID)
		if err == nil {
			item.Nickname = user.DisplayName
			item.Email = user.Email
		} else {
			xl.Debugf("failed to resolve user %s, error %v", p.UserID, err)
			item.Nickname = p.UserID
		}
		res = append(res, item)
	}
	return res
}

func (h *InterviewApiHandler) makeInterviewResponse(xl *xlog.Logger, interview *model.InterviewDo,
	participants []model.InterviewParticipantDo) model.InterviewResponse {
	notes := make([]model.InterviewNoteResponse, 0, len(interview.Notes))
	for _, note := range interview.Notes {
		notes = append(notes, model.InterviewNoteResponse{
			Time:    note.Time,
			ActorID: note.ActorID,
			Content: note.Content,
		})
	}
	return model.InterviewResponse{
		ID:              interview.ID,
		ApplicationID:   interview.ApplicationID,
		Title:           interview.Title,
		Type:            string(interview.Type),
		Round:           interview.Round,
		ScheduledStart:  interview.ScheduledStart.Unix(),
		DurationMinutes: interview.DurationMinutes,
		Mode:            string(interview.Mode),
		Status:          string(interview.Status.Name()),
		StatusCode:      int(interview.Status),
		Outcome:         string(interview.Outcome),
		MeetingLink:     interview.MeetingLink,
		Participants:    h.makeParticipantResponses(xl, participants),
		Notes:           notes,
	}
}

// ScheduleInterview 为投递单排期一场新面试。
func (h *InterviewApiHandler) ScheduleInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	args := form.InterviewScheduleForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		xl.Infof("schedule form validation failed, error %v", err)
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	roles := make(map[string]model.ParticipantRole, len(args.Roles))
	for id, role := range args.Roles {
		valid := false
		for _, known := range model.ParticipantRoles {
			if known == role {
				valid = true
				break
			}
		}
		if !valid {
			responseErr := model.NewResponseErrorBadRequest()
			model.NewFailResponse(*responseErr).WithRequestID(requestID).WithErrorMessage("未知的参与者角色: " + role).Send(c)
			return
		}
		roles[id] = model.ParticipantRole(role)
	}
	req := scheduling.ScheduleRequest{
		ActorID:         userID,
		ApplicationID:   args.ApplicationID,
		Title:           args.Title,
		Type:            model.InterviewType(args.Type),
		Mode:            model.InterviewMode(args.Mode),
		Start:           time.Unix(args.ScheduledStart, 0).UTC(),
		DurationMinutes: args.DurationMinutes,
		ParticipantIDs:  args.ParticipantIDs,
		LeadID:          args.LeadID,
		Roles:           roles,
	}
	interview, err := h.Scheduler.Schedule(xl, req)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("interview %s scheduled for application %s by user %s", interview.ID, interview.ApplicationID, userID)
	model.NewSuccessResponse(model.UpsertInterviewResponse{ID: interview.ID}).WithRequestID(requestID).Send(c)
}

// GetInterview 获取面试详情。
func (h *InterviewApiHandler) GetInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	interviewID := c.Param("interviewId")
	interview, participants, err := h.Scheduler.GetInterview(xl, interviewID)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	resp := h.makeInterviewResponse(xl, interview, participants)
	model.NewSuccessResponse(resp).WithRequestID(requestID).Send(c)
}

// ListInterviews 按分页列出当前用户参与或创建的面试。
func (h *InterviewApiHandler) ListInterviews(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	pageNum := c.GetInt(model.PageNumContextKey)
	pageSize := c.GetInt(model.PageSizeContextKey)
	interviews, total, err := h.Interview.ListByUserPage(xl, userID, pageNum, pageSize)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	list := make([]model.InterviewResponse, 0, len(interviews))
	for i := range interviews {
		participants, err := h.Interview.Participants(xl, interviews[i].ID)
		if err != nil {
			xl.Debugf("failed to list participants of interview %s, error %v", interviews[i].ID, err)
			participants = nil
		}
		list = append(list, h.makeInterviewResponse(xl, &interviews[i], participants))
	}
	endPage := pageNum*pageSize >= total
	nextPageNum := pageNum + 1
	if endPage {
		nextPageNum = pageNum
	}
	resp := model.InterviewListResponse{
		Total:          total,
		Cnt:            len(list),
		CurrentPageNum: pageNum,
		NextPageNum:    nextPageNum,
		PageSize:       pageSize,
		EndPage:        endPage,
		List:           list,
	}
	model.NewSuccessResponse(resp).WithRequestID(requestID).Send(c)
}

// RescheduleInterview 改期。
func (h *InterviewApiHandler) RescheduleInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	args := form.InterviewRescheduleForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	newStart := time.Unix(args.ScheduledStart, 0).UTC()
	interview, err := h.Scheduler.Reschedule(xl, userID, interviewID, newStart, args.DurationMinutes, args.Reason)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("interview %s rescheduled to %v by user %s", interview.ID, newStart, userID)
	model.NewSuccessResponse(model.UpsertInterviewResponse{ID: interview.ID}).WithRequestID(requestID).Send(c)
}

// CancelInterview 取消面试。
func (h *InterviewApiHandler) CancelInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	args := form.InterviewCancelForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	interview, err := h.Scheduler.Cancel(xl, userID, interviewID, args.Reason)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("interview %s cancelled by user %s", interview.ID, userID)
	model.NewSuccessResponse(model.UpsertInterviewResponse{ID: interview.ID}).WithRequestID(requestID).Send(c)
}

// CompleteInterview 标记面试已完成。
func (h *InterviewApiHandler) CompleteInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	args := form.InterviewCompleteForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	interview, err := h.Scheduler.Complete(xl, userID, interviewID, args.Summary)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	model.NewSuccessResponse(model.UpsertInterviewResponse{ID: interview.ID}).WithRequestID(requestID).Send(c)
}

// NoShowInterview 标记缺席。
func (h *InterviewApiHandler) NoShowInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	args := form.InterviewNoShowForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	interview, err := h.Scheduler.MarkNoShow(xl, userID, interviewID, args.Reason)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	model.NewSuccessResponse(model.UpsertInterviewResponse{ID: interview.ID}).WithRequestID(requestID).Send(c)
}

// DeleteInterview 软删除一场面试。
func (h *InterviewApiHandler) DeleteInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	interviewID := c.Param("interviewId")
	if err := h.Scheduler.Delete(xl, userID, interviewID); err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	xl.Infof("interview %s deleted by user %s", interviewID, userID)
	model.NewSuccessResponse(nil).WithRequestID(requestID).Send(c)
}

// ListAvailableSlots 查询一组参与者在指定范围内的候选时间槽。
func (h *InterviewApiHandler) ListAvailableSlots(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	args := form.SlotQueryForm{}
	if err := c.Bind(&args); err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*responseErr).WithRequestID(requestID).Send(c)
		return
	}
	rangeStart := time.Unix(args.RangeStart, 0).UTC()
	rangeEnd := time.Unix(args.RangeEnd, 0).UTC()
	slots, err := h.Scheduler.GetAvailableSlots(xl, args.ParticipantIDs, rangeStart, rangeEnd, args.DurationMinutes)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	list := make([]model.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		list = append(list, model.SlotResponse{
			Start:       slot.Start.Unix(),
			End:         slot.End.Unix(),
			Available:   slot.Available,
			Unavailable: slot.Unavailable,
		})
	}
	model.NewSuccessResponse(model.SlotListResponse{Total: len(list), List: list}).WithRequestID(requestID).Send(c)
}

// GetApplicationOutcome 获取投递单层面的汇总结论。
func (h *InterviewApiHandler) GetApplicationOutcome(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	applicationID := c.Param("applicationId")
	outcome, err := h.Scheduler.GetOverallOutcome(xl, applicationID)
	if err != nil {
		sendError(c, xl, requestID, err)
		return
	}
	resp := model.ApplicationOutcomeResponse{
		ApplicationID:   applicationID,
		Outcome:         string(outcome),
		ProcessComplete: h.Evaluation.IsProcessComplete(xl, applicationID),
	}
	model.NewSuccessResponse(resp).WithRequestID(requestID).Send(c)
}
