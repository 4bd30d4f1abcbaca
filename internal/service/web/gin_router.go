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

package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/cloud"
	"github.com/solutions/hire-cube/internal/service/dao"
	"github.com/solutions/hire-cube/internal/service/db"
	"github.com/solutions/hire-cube/internal/service/scheduling"
	"github.com/solutions/hire-cube/internal/service/web/handler"
	"github.com/solutions/hire-cube/internal/service/web/middleware"
)

// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config) (*gin.Engine, error) {
	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 全局CORS配置
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "HEAD"},
		AllowHeaders: []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token",
			"Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		MaxAge: 12 * time.Hour,
	}))

	// 2. 声明Service
	// 2.1 账号Service
	accountService, err := db.NewAccountService(*config.Mongo, config.JwtKey, nil)
	if err != nil {
		return nil, err
	}

	// 2.2 面试与投递单Service
	interviewService, err := db.NewInterviewService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	applicationService, err := db.NewApplicationService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	evaluationDao := dao.NewEvaluationDaoService(config.Mongo)

	// 2.3 外部依赖：会议提供方与通知
	meetingProvider, err := cloud.NewMeetingProvider(config, nil)
	if err != nil {
		return nil, err
	}
	notificationSender, err := cloud.NewNotificationSender(config, nil)
	if err != nil {
		return nil, err
	}

	// 2.4 排期引擎
	rules := scheduling.NewRules(config.Scheduling)
	scheduler := scheduling.NewScheduler(interviewService, applicationService, evaluationDao,
		accountService, meetingProvider, notificationSender, rules)
	evaluationService := scheduling.NewEvaluationService(evaluationDao, interviewService, rules)

	// 3. 声明Handler
	interviewApiHandler := handler.NewInterviewApiHandler(scheduler, evaluationService, interviewService, accountService)
	evaluationApiHandler := handler.NewEvaluationApiHandler(evaluationService)
	accountApiHandler := handler.NewAccountApiHandler(accountService)

	middleware.InitMiddleware(*config)

	// 4. 配置V1路径
	v1 := router.Group("/v1", addRequestID, middleware.FetchPageInfo)
	{
		// 4.1 登录/注册
		v1.POST("signUpOrIn", accountApiHandler.SignUpOrIn)
		v1.POST("signUpOrIn/", accountApiHandler.SignUpOrIn)
	}
	baseAuth := v1.Group("", middleware.Authenticate)
	{
		// 4.2 账号
		baseAuth.POST("signOut", accountApiHandler.SignOut)
		baseAuth.GET("accountInfo", accountApiHandler.GetAccountInfo)

		// 4.3 面试排期与生命周期
		baseAuth.POST("interview", interviewApiHandler.ScheduleInterview)
		baseAuth.GET("interview", interviewApiHandler.ListInterviews)
		baseAuth.GET("interview/:interviewId", interviewApiHandler.GetInterview)
		baseAuth.DELETE("interview/:interviewId", interviewApiHandler.DeleteInterview)
		baseAuth.POST("rescheduleInterview/:interviewId", interviewApiHandler.RescheduleInterview)
		baseAuth.POST("cancelInterview/:interviewId", interviewApiHandler.CancelInterview)
		baseAuth.POST("completeInterview/:interviewId", interviewApiHandler.CompleteInterview)
		baseAuth.POST("noShowInterview/:interviewId", interviewApiHandler.NoShowInterview)
		baseAuth.GET("availableSlots", interviewApiHandler.ListAvailableSlots)

		// 4.4 评价与结论
		baseAuth.POST("interview/:interviewId/evaluation", evaluationApiHandler.SubmitEvaluation)
		baseAuth.GET("interview/:interviewId/evaluation", evaluationApiHandler.GetEvaluationSummary)
		baseAuth.GET("application/:applicationId/outcome", interviewApiHandler.GetApplicationOutcome)
	}

	router.NoRoute(addRequestID, returnNotFound)
	router.RedirectTrailingSlash = false

	return router, nil
}

func addRequestID(c *gin.Context) {
	requestID := ""
	if requestID = c.Request.Header.Get(model.RequestIDHeader); requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	xl := xlog.New(requestID)
	xl.Debugf("request: %s %s", c.Request.Method, c.Request.URL.Path)
	c.Set(model.XLogKey, xl)
}

func returnNotFound(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	xl.Debugf("%s %s: not found", c.Request.Method, c.Request.URL.Path)
	responseErr := model.NewResponseErrorNotFound()
	resp := model.NewFailResponse(*responseErr)
	c.JSON(http.StatusOK, resp)
}
