package model

import (
	"encoding/json"
	"time"
)

/*
	db_model.go: 规定数据存储的格式。
*/

type FlattenMap map[string]interface{}

// InterviewStatusCode 面试状态。Scheduled为初始态，其余均为终态。
type InterviewStatusCode int

const (
	InterviewStatusCodeScheduled InterviewStatusCode = 1
	InterviewStatusCodeCompleted InterviewStatusCode = 2
	InterviewStatusCodeCancelled InterviewStatusCode = 3
	InterviewStatusCodeNoShow    InterviewStatusCode = 4
)

type InterviewStatusName string

const (
	InterviewStatusNameScheduled InterviewStatusName = "已排期"
	InterviewStatusNameCompleted InterviewStatusName = "已完成"
	InterviewStatusNameCancelled InterviewStatusName = "已取消"
	InterviewStatusNameNoShow    InterviewStatusName = "缺席"
)

func (s InterviewStatusCode) Name() InterviewStatusName {
	switch s {
	case InterviewStatusCodeScheduled:
		return InterviewStatusNameScheduled
	case InterviewStatusCodeCompleted:
		return InterviewStatusNameCompleted
	case InterviewStatusCodeCancelled:
		return InterviewStatusNameCancelled
	case InterviewStatusCodeNoShow:
		return InterviewStatusNameNoShow
	default:
		return InterviewStatusNameCancelled
	}
}

// Outcome 面试结论，独立于状态，仅已完成的面试可以被赋值。
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomePending Outcome = "pending"
)

// Recommendation 单个面试官对一场面试的评价结论。
type Recommendation string

const (
	RecommendationPass  Recommendation = "pass"
	RecommendationFail  Recommendation = "fail"
	RecommendationMaybe Recommendation = "maybe"
)

// InterviewType 面试类型。
type InterviewType string

const (
	InterviewTypeScreening  InterviewType = "screening"
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeManagerial InterviewType = "managerial"
	InterviewTypeCultural   InterviewType = "cultural"
	InterviewTypeFinal      InterviewType = "final"
	InterviewTypePanel      InterviewType = "panel"
)

var InterviewTypes = []interface{}{
	string(InterviewTypeScreening), string(InterviewTypeTechnical), string(InterviewTypeBehavioral),
	string(InterviewTypeManagerial), string(InterviewTypeCultural), string(InterviewTypeFinal),
	string(InterviewTypePanel),
}

// InterviewMode 面试进行方式。
type InterviewMode string

const (
	InterviewModeInPerson InterviewMode = "in_person"
	InterviewModeOnline   InterviewMode = "online"
	InterviewModePhone    InterviewMode = "phone"
)

var InterviewModes = []interface{}{
	string(InterviewModeInPerson), string(InterviewModeOnline), string(InterviewModePhone),
}

// ParticipantRole 面试参与者角色。
type ParticipantRole string

const (
	ParticipantRolePrimary     ParticipantRole = "primary_interviewer"
	ParticipantRoleInterviewer ParticipantRole = "interviewer"
	ParticipantRoleObserver    ParticipantRole = "observer"
	ParticipantRoleShadow      ParticipantRole = "shadow"
)

var ParticipantRoles = []interface{}{
	string(ParticipantRolePrimary), string(ParticipantRoleInterviewer),
	string(ParticipantRoleObserver), string(ParticipantRoleShadow),
}

// ApplicationStatus 投递单状态，排期引擎只消费与推进其中一部分。
type ApplicationStatus string

const (
	ApplicationStatusApplied       ApplicationStatus = "applied"
	ApplicationStatusShortlisted   ApplicationStatus = "shortlisted"
	ApplicationStatusTestCompleted ApplicationStatus = "test_completed"
	ApplicationStatusInterview     ApplicationStatus = "interview"
	ApplicationStatusUnderReview   ApplicationStatus = "under_review"
	ApplicationStatusOffer         ApplicationStatus = "offer"
	ApplicationStatusRejected      ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn     ApplicationStatus = "withdrawn"
)

// SchedulableApplicationStatuses 允许发起新排期的投递单状态集合。
var SchedulableApplicationStatuses = []ApplicationStatus{
	ApplicationStatusShortlisted,
	ApplicationStatusInterview,
	ApplicationStatusUnderReview,
	ApplicationStatusTestCompleted,
}

// 允许执行修改类操作的账号角色。
const (
	AccountRoleHR         = "hr"
	AccountRoleAdmin      = "admin"
	AccountRoleSuperAdmin = "super_admin"
	AccountRoleRecruiter  = "recruiter"
	AccountRoleCandidate  = "candidate"
)

// StaffRoles 修改类操作默认放行的角色。
var StaffRoles = []string{AccountRoleHR, AccountRoleAdmin, AccountRoleSuperAdmin}

// InterviewNoteDo 面试生命周期事件记录，只追加不修改。
type InterviewNoteDo struct {
	Time    time.Time `json:"time" bson:"time"`
	ActorID string    `json:"actorId" bson:"actorId"`
	Content string    `json:"content" bson:"content"`
}

// InterviewDo 一场已排期的面试。
type InterviewDo struct {
	// 面试ID，作为数据库唯一标识。
	ID string `json:"id" bson:"_id"`
	// 所属投递单ID。
	ApplicationID string        `json:"applicationId" bson:"applicationId"`
	Title         string        `json:"title" bson:"title"`
	Type          InterviewType `json:"type" bson:"type"`
	// Round 面试轮次，从1开始。
	Round int `json:"round" bson:"round"`
	// ScheduledStart 排期开始时间，存储为UTC。
	ScheduledStart  time.Time           `json:"scheduledStart" bson:"scheduledStart"`
	DurationMinutes int                 `json:"durationMinutes" bson:"durationMinutes"`
	Mode            InterviewMode       `json:"mode" bson:"mode"`
	Status          InterviewStatusCode `json:"status" bson:"status"`
	Outcome         Outcome             `json:"outcome,omitempty" bson:"outcome,omitempty"`
	// MeetingID/MeetingLink 在线面试的会议信息，Online模式下有值。
	MeetingID   string `json:"meetingId,omitempty" bson:"meetingId,omitempty"`
	MeetingLink string `json:"meetingLink,omitempty" bson:"meetingLink,omitempty"`
	// Notes 生命周期事件日志，只追加。
	Notes []InterviewNoteDo `json:"notes" bson:"notes"`
	// Reminded 提醒任务是否已发送过提醒。
	Reminded bool `json:"reminded" bson:"reminded"`
	// Active 软删除标记。
	Active     bool      `json:"active" bson:"active"`
	CreateTime time.Time `json:"createTime" bson:"createTime"`
	UpdateTime time.Time `json:"updateTime" bson:"updateTime"`
	Creator    string    `json:"creator" bson:"creator"`
	Updator    string    `json:"updator" bson:"updator"`
}

// End 返回排期结束时间。
func (i *InterviewDo) End() time.Time {
	return i.ScheduledStart.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

func (i InterviewDo) Map() FlattenMap {
	val, _ := json.Marshal(&i)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// InterviewParticipantDo 面试参与者，排期时随面试一次性创建，之后不可变。
type InterviewParticipantDo struct {
	// ID 固定为 interviewId_userId，天然保证一场面试一个用户至多出现一次。
	ID          string          `json:"id" bson:"_id"`
	InterviewID string          `json:"interviewId" bson:"interviewId"`
	UserID      string          `json:"userId" bson:"userId"`
	Role        ParticipantRole `json:"role" bson:"role"`
	// IsLead 每场面试恰好一名负责人。
	IsLead     bool      `json:"isLead" bson:"isLead"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreateTime time.Time `json:"createTime" bson:"createTime"`
}

// EvaluationDo 参与者对一场已完成面试的评价。
type EvaluationDo struct {
	// ID 固定为 interviewId_evaluatorId，一场面试每人至多一条评价。
	ID             string         `json:"id" bson:"_id"`
	InterviewID    string         `json:"interviewId" bson:"interviewId"`
	EvaluatorID    string         `json:"evaluatorId" bson:"evaluatorId"`
	Recommendation Recommendation `json:"recommendation" bson:"recommendation"`
	// Rating 总评分0~10，可不填。
	Rating     *float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	Strengths  string    `json:"strengths,omitempty" bson:"strengths,omitempty"`
	Concerns   string    `json:"concerns,omitempty" bson:"concerns,omitempty"`
	Comments   string    `json:"comments,omitempty" bson:"comments,omitempty"`
	CreateTime time.Time `json:"createTime" bson:"createTime"`
	UpdateTime time.Time `json:"updateTime" bson:"updateTime"`
}

// ApplicationStatusChangeDo 投递单状态变更记录。
type ApplicationStatusChangeDo struct {
	Time    time.Time         `json:"time" bson:"time"`
	From    ApplicationStatus `json:"from" bson:"from"`
	To      ApplicationStatus `json:"to" bson:"to"`
	ActorID string            `json:"actorId" bson:"actorId"`
	Comment string            `json:"comment,omitempty" bson:"comment,omitempty"`
}

// ApplicationDo 候选人的投递单，排期引擎读取并推进其状态。
type ApplicationDo struct {
	ID          string            `json:"id" bson:"_id"`
	CandidateID string            `json:"candidateId" bson:"candidateId"`
	PositionID  string            `json:"positionId" bson:"positionId"`
	RecruiterID string            `json:"recruiterId" bson:"recruiterId"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	// StatusHistory 状态流转记录，只追加。
	StatusHistory []ApplicationStatusChangeDo `json:"statusHistory" bson:"statusHistory"`
	CreateTime    time.Time                   `json:"createTime" bson:"createTime"`
	UpdateTime    time.Time                   `json:"updateTime" bson:"updateTime"`
}

// AccountDo 用户账号信息。
type AccountDo struct {
	// 用户ID，作为数据库唯一标识。
	ID string `json:"id" bson:"_id"`
	// 手机号，目前要求全局唯一。
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
	// 用户昵称
	Nickname string `json:"nickname" bson:"nickname"`
	// Roles 账号角色列表，授权检查依据。
	Roles []string `json:"roles" bson:"roles"`
	// RegisterTime 用户注册（首次登录）时间。
	RegisterTime time.Time `json:"registerTime" bson:"registerTime"`
	// LastLoginTime 上次登录时间。
	LastLoginTime time.Time `json:"lastLoginTime" bson:"lastLoginTime"`
}

func (a AccountDo) Map() FlattenMap {
	val, _ := json.Marshal(&a)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// UserInfo 目录服务解析出的用户摘要。
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// AccountTokenDo 已登录用户的信息。
type AccountTokenDo struct {
	ID        string `json:"id" bson:"_id"`
	AccountId string `json:"accountId" bson:"accountId"`
	// Token 本次登录使用的token。
	Token          string    `json:"token" bson:"token"`
	LastModifyTime time.Time `json:"lastModifyTime" bson:"lastModifyTime"`
}
