package cloud

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

// NewMeetingProvider 按配置创建会议提供方。
func NewMeetingProvider(conf *utils.Config, xl *xlog.Logger) (scheduling.MeetingProvider, error) {
	if xl == nil {
		xl = xlog.New("hire-cube-meeting")
	}
	meetingConf := conf.Meeting
	if meetingConf == nil {
		meetingConf = &utils.MeetingConfig{Provider: "mock"}
	}
	switch meetingConf.Provider {
	// 模拟的会议提供方，仅供测试使用。
	case "mock", "test", "":
		return &MockMeetingProvider{}, nil
	case "generated":
		return NewGeneratedMeetingProvider(meetingConf, xl), nil
	case "webhook":
		return NewWebhookMeetingProvider(meetingConf, xl), nil
	case "qiniu-rtc":
		return NewQiniuRTCMeetingProvider(conf, xl), nil
	default:
		xl.Errorf("unsupported meeting provider %s", meetingConf.Provider)
		return nil, fmt.Errorf("unsupported meeting provider")
	}
}

// MockMeetingProvider 固定返回可预期会议信息。
type MockMeetingProvider struct {
	Down bool
}

func (p *MockMeetingProvider) CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*scheduling.Meeting, error) {
	if p.Down {
		return nil, fmt.Errorf("mock meeting provider down")
	}
	id := "mock-" + strings.ReplaceAll(strings.ToLower(title), " ", "-")
	return &scheduling.Meeting{
		ID:   id,
		Link: "https://meet.example.com/" + id,
	}, nil
}

func (p *MockMeetingProvider) CancelMeeting(xl *xlog.Logger, meetingID string) bool {
	return true
}

func (p *MockMeetingProvider) IsAvailable() bool {
	return !p.Down
}

// GeneratedMeetingProvider 本地生成会议号与入口链接，不依赖外部服务。
// 适合链接仅作为房间标识、由前端约定入会方式的部署。
type GeneratedMeetingProvider struct {
	linkBase string
	xl       *xlog.Logger
}

func NewGeneratedMeetingProvider(conf *utils.MeetingConfig, xl *xlog.Logger) *GeneratedMeetingProvider {
	linkBase := conf.LinkBase
	if linkBase == "" {
		linkBase = "https://meet.example.com"
	}
	return &GeneratedMeetingProvider{
		linkBase: strings.TrimRight(linkBase, "/"),
		xl:       xl,
	}
}

func (p *GeneratedMeetingProvider) CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*scheduling.Meeting, error) {
	if xl == nil {
		xl = p.xl
	}
	id := uuid.NewString()
	xl.Infof("generated meeting %s for %q at %s", id, title, start.Format(time.RFC3339))
	return &scheduling.Meeting{
		ID:       id,
		Link:     p.linkBase + "/" + id,
		Password: uuid.NewString()[:8],
	}, nil
}

func (p *GeneratedMeetingProvider) CancelMeeting(xl *xlog.Logger, meetingID string) bool {
	return true
}

func (p *GeneratedMeetingProvider) IsAvailable() bool {
	return true
}
