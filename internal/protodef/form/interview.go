package form

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

const (
	ErrTitleMsg       = "标题长度需要在1~100之间"
	ErrDurationMsg    = "时长需要在1~480分钟之间"
	ErrStartTimeMsg   = "开始时间不能为空"
	ErrParticipantMsg = "至少需要一名面试官"
	ErrReasonMsg      = "原因不能为空"
	ErrRangeMsg       = "时间范围不合法"
)

// InterviewScheduleForm 发起排期的表单。
type InterviewScheduleForm struct {
	ApplicationID string `json:"applicationId" form:"applicationId"`
	Title         string `json:"title" form:"title"`
	Type          string `json:"type" form:"type"`
	Mode          string `json:"mode" form:"mode"`
	// ScheduledStart 排期开始时间，unix秒。
	ScheduledStart  int64 `json:"scheduledStart" form:"scheduledStart"`
	DurationMinutes int   `json:"durationMinutes" form:"durationMinutes"`
	// ParticipantIDs 参与面试官的用户ID列表。
	ParticipantIDs []string `json:"participantIds" form:"participantIds"`
	// LeadID 负责人，缺省为ParticipantIDs中的第一位。
	LeadID string `json:"leadId" form:"leadId"`
	// Roles 可选的 userId -> 角色 指定，缺省负责人为primary_interviewer，其余为interviewer。
	Roles map[string]string `json:"roles" form:"roles"`
}

func (i *InterviewScheduleForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.ApplicationID, validation.Required),
		validation.Field(&i.Title, validation.Required, validation.Length(1, 100).Error(ErrTitleMsg)),
		validation.Field(&i.Type, validation.Required, validation.In(model.InterviewTypes...)),
		validation.Field(&i.Mode, validation.Required, validation.In(model.InterviewModes...)),
		validation.Field(&i.ScheduledStart, validation.Required.Error(ErrStartTimeMsg)),
		validation.Field(&i.DurationMinutes, validation.Required.Error(ErrDurationMsg), validation.Min(1).Error(ErrDurationMsg), validation.Max(480).Error(ErrDurationMsg)),
		validation.Field(&i.ParticipantIDs, validation.Required.Error(ErrParticipantMsg), validation.Length(1, 0).Error(ErrParticipantMsg)),
	)
}

func (i *InterviewScheduleForm) Map() map[string]interface{} {
	var res map[string]interface{}
	val, _ := json.Marshal(i)
	_ = json.Unmarshal(val, &res)
	return res
}

// InterviewRescheduleForm 改期表单。
type InterviewRescheduleForm struct {
	ScheduledStart int64 `json:"scheduledStart" form:"scheduledStart"`
	// DurationMinutes 为0表示沿用原时长。
	DurationMinutes int    `json:"durationMinutes" form:"durationMinutes"`
	Reason          string `json:"reason" form:"reason"`
}

func (i *InterviewRescheduleForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.ScheduledStart, validation.Required.Error(ErrStartTimeMsg)),
		validation.Field(&i.DurationMinutes, validation.Min(0).Error(ErrDurationMsg), validation.Max(480).Error(ErrDurationMsg)),
		validation.Field(&i.Reason, validation.Required.Error(ErrReasonMsg)),
	)
}

// InterviewCancelForm 取消排期表单。
type InterviewCancelForm struct {
	Reason string `json:"reason" form:"reason"`
}

func (i *InterviewCancelForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Reason, validation.Required.Error(ErrReasonMsg)),
	)
}

// InterviewCompleteForm 完成面试表单。
type InterviewCompleteForm struct {
	Summary string `json:"summary" form:"summary"`
}

func (i *InterviewCompleteForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Summary, validation.Length(0, 2000)),
	)
}

// InterviewNoShowForm 标记缺席表单。
type InterviewNoShowForm struct {
	Reason string `json:"reason" form:"reason"`
}

func (i *InterviewNoShowForm) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Reason, validation.Length(0, 500)),
	)
}

// SlotQueryForm 查询候选时间槽的表单。
type SlotQueryForm struct {
	ParticipantIDs []string `json:"participantIds" form:"participantIds"`
	// RangeStart/RangeEnd 查询范围，unix秒。
	RangeStart      int64 `json:"rangeStart" form:"rangeStart"`
	RangeEnd        int64 `json:"rangeEnd" form:"rangeEnd"`
	DurationMinutes int   `json:"durationMinutes" form:"durationMinutes"`
}

func (i *SlotQueryForm) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.ParticipantIDs, validation.Required.Error(ErrParticipantMsg)),
		validation.Field(&i.RangeStart, validation.Required.Error(ErrRangeMsg)),
		validation.Field(&i.RangeEnd, validation.Required.Error(ErrRangeMsg)),
		validation.Field(&i.DurationMinutes, validation.Required.Error(ErrDurationMsg), validation.Min(1).Error(ErrDurationMsg), validation.Max(480).Error(ErrDurationMsg)),
	)
	if err != nil {
		return err
	}
	if i.RangeEnd <= i.RangeStart {
		return validation.NewError("validation_range", ErrRangeMsg)
	}
	return nil
}
