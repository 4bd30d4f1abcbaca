// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

/*
	http_model.go: 规定API的参数与返回值的定义，***Args 表示 *** 接口的参数，***Response表示 *** 接口的返回体格式。
*/

const (
	// RequestIDHeader 七牛 request ID 头部。
	RequestIDHeader = "X-Reqid"
	// XLogKey gin context中，用于获取记录请求相关日志的 xlog logger的key。
	XLogKey = "xlog-logger"

	// UserIDContextKey 存放在请求context 中的用户ID。
	UserIDContextKey = "userID"
	// UserContextKey 存放用户对象
	UserContextKey = "user"

	// PageNumContextKey/PageSizeContextKey 分页参数。
	PageNumContextKey  = "pageNum"
	PageSizeContextKey = "pageSize"

	// 状态码和状态信息
	ResponseStatusCodeSuccess    ResponseStatusCode    = 0
	ResponseStatusMessageSuccess ResponseStatusMessage = "success"
)

// 状态码和状态信息
type ResponseStatusCode int
type ResponseStatusMessage string

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    int(ResponseStatusCodeSuccess),
		Message: string(ResponseStatusMessageSuccess),
		Data:    data,
	}
}

func NewFailResponse(err ResponseError) *Response {
	return &Response{
		Code:    int(err.Code),
		Message: string(err.Message),
	}
}

func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

func (r *Response) WithErrorMessage(message string) *Response {
	r.Message = string(message)
	return r
}

func (r *Response) Send(c *gin.Context) {
	c.JSON(http.StatusOK, r)
}

// ParticipantResponse 面试参与者信息。
type ParticipantResponse struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsLead   bool   `json:"isLead"`
}

// InterviewNoteResponse 面试生命周期日志条目。
type InterviewNoteResponse struct {
	Time    time.Time `json:"time"`
	ActorID string    `json:"actorId"`
	Content string    `json:"content"`
}

// InterviewResponse 面试详情。
type InterviewResponse struct {
	ID              string                  `json:"id"`
	ApplicationID   string                  `json:"applicationId"`
	Title           string                  `json:"title"`
	Type            string                  `json:"type"`
	Round           int                     `json:"round"`
	ScheduledStart  int64                   `json:"scheduledStart"`
	DurationMinutes int                     `json:"durationMinutes"`
	Mode            string                  `json:"mode"`
	Status          string                  `json:"status"`
	StatusCode      int                     `json:"statusCode"`
	Outcome         string                  `json:"outcome,omitempty"`
	MeetingLink     string                  `json:"meetingLink,omitempty"`
	Participants    []ParticipantResponse   `json:"participants"`
	Notes           []InterviewNoteResponse `json:"notes"`
}

// UpsertInterviewResponse 创建/更新面试的返回。
type UpsertInterviewResponse struct {
	ID string `json:"id"`
}

// InterviewListResponse 面试列表。
type InterviewListResponse struct {
	Total          int                 `json:"total"`
	NextId         string              `json:"nextId"`
	Cnt            int                 `json:"cnt"`
	CurrentPageNum int                 `json:"currentPageNum"`
	NextPageNum    int                 `json:"nextPageNum"`
	PageSize       int                 `json:"pageSize"`
	EndPage        bool                `json:"endPage"`
	List           []InterviewResponse `json:"list"`
}

// SlotResponse 一个候选时间槽及各参与者的可用性。
type SlotResponse struct {
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Available   []string `json:"available"`
	Unavailable []string `json:"unavailable"`
}

// SlotListResponse 候选时间槽列表。
type SlotListResponse struct {
	Total int            `json:"total"`
	List  []SlotResponse `json:"list"`
}

// EvaluationResponse 单条评价。
type EvaluationResponse struct {
	ID             string   `json:"id"`
	InterviewID    string   `json:"interviewId"`
	EvaluatorID    string   `json:"evaluatorId"`
	Recommendation string   `json:"recommendation"`
	Rating         *float64 `json:"rating,omitempty"`
	Strengths      string   `json:"strengths,omitempty"`
	Concerns       string   `json:"concerns,omitempty"`
	Comments       string   `json:"comments,omitempty"`
	CreateTime     int64    `json:"createTime"`
	UpdateTime     int64    `json:"updateTime"`
}

// EvaluationSummaryResponse 一场面试的评价汇总。
type EvaluationSummaryResponse struct {
	InterviewID    string               `json:"interviewId"`
	AverageScore   float64              `json:"averageScore"`
	Recommendation string               `json:"recommendation,omitempty"`
	Outcome        string               `json:"outcome,omitempty"`
	Evaluations    []EvaluationResponse `json:"evaluations"`
}

// ApplicationOutcomeResponse 投递单层面的汇总结论。
type ApplicationOutcomeResponse struct {
	ApplicationID   string `json:"applicationId"`
	Outcome         string `json:"outcome"`
	ProcessComplete bool   `json:"processComplete"`
}

// UserInfoResponse 用户信息。
type UserInfoResponse struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// SignInResponse 登录返回。
type SignInResponse struct {
	UserInfoResponse
	Token string `json:"token"`
}
