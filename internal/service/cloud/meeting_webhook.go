package cloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

const defaultWebhookTimeout = 5 * time.Second

// WebhookMeetingProvider 调第三方会议系统的HTTP接口创建/取消会议。
// 对端返回JSON，字段为 meetingId/joinUrl/password。
type WebhookMeetingProvider struct {
	url    string
	token  string
	client *http.Client
	// lastFailure 最近一次调用失败的时间戳(unix纳秒)，短时间内视为不可用。
	lastFailure int64
	xl          *xlog.Logger
}

func NewWebhookMeetingProvider(conf *utils.MeetingConfig, xl *xlog.Logger) *WebhookMeetingProvider {
	timeout := defaultWebhookTimeout
	if conf.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.TimeoutSeconds) * time.Second
	}
	return &WebhookMeetingProvider{
		url:    conf.WebhookURL,
		token:  conf.WebhookToken,
		client: &http.Client{Timeout: timeout},
		xl:     xl,
	}
}

func (p *WebhookMeetingProvider) CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*scheduling.Meeting, error) {
	if xl == nil {
		xl = p.xl
	}
	payload := map[string]interface{}{
		"title":     title,
		"start":     start.Unix(),
		"duration":  durationMinutes,
		"attendees": attendeeEmails,
	}
	val, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", p.url, bytes.NewReader(val))
	if err != nil {
		xl.Errorf("error making req err:%v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	res, err := p.client.Do(req)
	if err != nil {
		p.markFailure()
		xl.Errorf("error invoke meeting webhook err:%v", err)
		return nil, errors2.New(errors2.ServerErrorMeetingProviderDown, "meeting provider unreachable")
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		p.markFailure()
		xl.Errorf("meeting webhook StatusCode %d", res.StatusCode)
		return nil, errors2.New(errors2.ServerErrorMeetingProviderDown, fmt.Sprintf("meeting provider status %d", res.StatusCode))
	}
	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		xl.Errorf("error read body err:%v", err)
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		xl.Errorf("invalid response json %s", string(data))
		return nil, errors2.New(errors2.ServerErrorMeetingProviderDown, "invalid meeting provider response")
	}
	result := gjson.ParseBytes(data)
	meeting := &scheduling.Meeting{
		ID:       result.Get("meetingId").String(),
		Link:     result.Get("joinUrl").String(),
		Password: result.Get("password").String(),
	}
	if meeting.ID == "" || meeting.Link == "" {
		xl.Errorf("meeting provider response missing fields: %s", string(data))
		return nil, errors2.New(errors2.ServerErrorMeetingProviderDown, "incomplete meeting provider response")
	}
	atomic.StoreInt64(&p.lastFailure, 0)
	return meeting, nil
}

func (p *WebhookMeetingProvider) CancelMeeting(xl *xlog.Logger, meetingID string) bool {
	if xl == nil {
		xl = p.xl
	}
	req, err := http.NewRequest("DELETE", p.url+"/"+meetingID, nil)
	if err != nil {
		return false
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	res, err := p.client.Do(req)
	if err != nil {
		xl.Errorf("error cancel meeting %s err:%v", meetingID, err)
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNoContent
}

// IsAvailable 最近一分钟内调用失败过则按不可用处理，排期走占位链接。
func (p *WebhookMeetingProvider) IsAvailable() bool {
	if p.url == "" {
		return false
	}
	last := atomic.LoadInt64(&p.lastFailure)
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) > time.Minute
}

func (p *WebhookMeetingProvider) markFailure() {
	atomic.StoreInt64(&p.lastFailure, time.Now().UnixNano())
}
