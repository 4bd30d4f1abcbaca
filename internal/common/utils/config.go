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

package utils

import (
	"log"
	"os"
	"time"

	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

func InitConf(configFilePath string) {
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// QiniuKeyPair 七牛API access key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuRTCConfig 七牛RTC服务配置，在线面试房间基于RTC房间实现。
type QiniuRTCConfig struct {
	AppID string `json:"app_id"`
	// RTC room token的有效时间。
	RoomTokenExpireSecond int    `json:"room_token_expire_s"`
	PublishURL            string `json:"publish_url"`
}

// SchedulingConfig 面试排期的业务规则配置。
type SchedulingConfig struct {
	// Timezone 业务时区，工作日/工作时间按此时区判断。
	Timezone          string `json:"timezone"`
	BusinessStartHour int    `json:"business_start_hour"`
	BusinessEndHour   int    `json:"business_end_hour"`
	// SlotStrideMinutes 候选时间槽的步长。
	SlotStrideMinutes int `json:"slot_stride_m"`
	// BufferMinutes 已有面试结束后的过渡缓冲时间。
	BufferMinutes int `json:"buffer_m"`
	// AdvanceNoticeMinutes 新排期距当前时间的最短提前量。
	AdvanceNoticeMinutes   int `json:"advance_notice_m"`
	CompletionDelayMinutes int `json:"completion_delay_m"`
	NoShowGraceMinutes     int `json:"no_show_grace_m"`
	// EvaluationEditDays 评价提交后允许作者修改的天数。
	EvaluationEditDays int `json:"evaluation_edit_days"`
	// ReminderLeadMinutes 面试开始前多久发送提醒。
	ReminderLeadMinutes int `json:"reminder_lead_m"`
	// ExpireAfterHours 过期未处理的排期被批量置为缺席的时间。
	ExpireAfterHours int `json:"expire_after_h"`
}

// Location 返回业务时区，解析失败时回退到UTC。
func (c *SchedulingConfig) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("failed to load timezone %s, fall back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// MeetingConfig 在线会议提供方配置。
type MeetingConfig struct {
	// Provider 会议提供方类型：mock/generated/webhook/qiniu-rtc。
	Provider string `json:"provider"`
	// LinkBase 生成会议链接的前缀。
	LinkBase string `json:"link_base"`
	// WebhookURL webhook类型提供方的创建会议地址。
	WebhookURL     string `json:"webhook_url"`
	WebhookToken   string `json:"webhook_token"`
	TimeoutSeconds int    `json:"timeout_s"`
}

// MailConfig 发送邮件通知的配置。
type MailConfig struct {
	Enabled  bool   `json:"enabled"`
	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	From     string `json:"from"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RongCloudIMConfig 融云IM服务配置。
type RongCloudIMConfig struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

// NotificationConfig 通知发送配置。
type NotificationConfig struct {
	// Provider 通知渠道：mock/mail/rongcloud。
	Provider  string             `json:"provider"`
	Mail      *MailConfig        `json:"mail"`
	RongCloud *RongCloudIMConfig `json:"rongcloud"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int `json:"debug_level"`
	ListenPort int `json:"listen_port"`
	// 前端页面host，用于拼接会议入口链接。
	FrontendUrlHost string              `json:"frontend_url_host"`
	Mongo           *MongoConfig        `json:"mongo"`
	QiniuKeyPair    QiniuKeyPair        `json:"qiniu_key_pair"`
	RTC             *QiniuRTCConfig     `json:"rtc"`
	Scheduling      *SchedulingConfig   `json:"scheduling"`
	Meeting         *MeetingConfig      `json:"meeting"`
	Notification    *NotificationConfig `json:"notification"`
	JwtKey          string              `json:"jwt_key"`
}

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel: 0,
		ListenPort: 8080,
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "hire_cube_test",
		},
		Scheduling: &SchedulingConfig{
			Timezone:          "UTC",
			BusinessStartHour: 9,
			BusinessEndHour:   18,
		},
		Meeting: &MeetingConfig{
			Provider: "mock",
		},
		Notification: &NotificationConfig{
			Provider: "mock",
			RongCloud: &RongCloudIMConfig{
				AppKey:    os.Getenv("RONGCLOUD_APP_KEY"),
				AppSecret: os.Getenv("RONGCLOUD_APP_SECRET"),
			},
		},
		JwtKey: "hire-cube",
	}
}
