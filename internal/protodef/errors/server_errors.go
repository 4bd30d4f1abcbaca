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

package errors

import "encoding/json"

// ServerError 服务端内部错误与非正常返回结果定义
type ServerError struct {
	Code    int    `json:"code"`
	Summary string `json:"summary"`
}

func (e *ServerError) Error() string {
	buf, _ := json.Marshal(e)
	return string(buf)
}

// 各种服务端内部错误的错误码定义。错误码为5位数字。
const (
	// 100xx 资源不存在。
	ServerErrorInterviewNotFound   = 10001
	ServerErrorApplicationNotFound = 10002
	ServerErrorUserNotFound        = 10003
	ServerErrorEvaluationNotFound  = 10004
	// 101xx 当前状态不允许该操作。
	ServerErrorInvalidState       = 10101
	ServerErrorTooEarlyToComplete = 10102
	ServerErrorTooEarlyForNoShow  = 10103
	ServerErrorEvaluationClosed   = 10104
	// 102xx 排期冲突。
	ServerErrorScheduleConflict        = 10201
	ServerErrorPendingInterviewExists  = 10202
	ServerErrorEvaluationAlreadyExists = 10203
	// 103xx 权限不足。
	ServerErrorNoPermission = 10301
	// 104xx 参数校验失败。
	ServerErrorValidation = 10401
	// 11000 数据库操作失败。
	ServerErrorMongoOpFail = 11000
	// 2开头表示外部服务错误。
	ServerErrorMeetingProviderDown = 20001
	ServerErrorNotifySendFail      = 20002
)

// 错误类别，按错误码区间划分，调用方按类别分流处理。
const (
	KindNotFound           = "not_found"
	KindInvalidState       = "invalid_state"
	KindConflict           = "conflict"
	KindUnauthorized       = "unauthorized"
	KindValidation         = "validation"
	KindDependencyDegraded = "dependency_degraded"
	KindInternal           = "internal"
)

// Kind 返回错误所属类别。
func (e *ServerError) Kind() string {
	switch {
	case e.Code >= 10001 && e.Code <= 10099:
		return KindNotFound
	case e.Code >= 10101 && e.Code <= 10199:
		return KindInvalidState
	case e.Code >= 10201 && e.Code <= 10299:
		return KindConflict
	case e.Code >= 10301 && e.Code <= 10399:
		return KindUnauthorized
	case e.Code >= 10401 && e.Code <= 10499:
		return KindValidation
	case e.Code >= 20000:
		return KindDependencyDegraded
	default:
		return KindInternal
	}
}

func New(code int, summary string) *ServerError {
	return &ServerError{Code: code, Summary: summary}
}

// IsKind 判断err是否为指定类别的ServerError。
func IsKind(err error, kind string) bool {
	serverErr, ok := err.(*ServerError)
	if !ok {
		return false
	}
	return serverErr.Kind() == kind
}

func IsNotFound(err error) bool     { return IsKind(err, KindNotFound) }
func IsInvalidState(err error) bool { return IsKind(err, KindInvalidState) }
func IsConflict(err error) bool     { return IsKind(err, KindConflict) }
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }
func IsValidation(err error) bool   { return IsKind(err, KindValidation) }
