package cloud

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	qiniuauth "github.com/qiniu/go-sdk/v7/auth"
	qiniurtc "github.com/qiniu/go-sdk/v7/rtc"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

const (
	// DefaultRTCRoomTokenTimeout 默认的RTC加入房间用token的过期时间。
	DefaultRTCRoomTokenTimeout = 24 * time.Hour
)

// QiniuRTCMeetingProvider 基于七牛RTC房间的在线面试会议。
// 会议ID即RTC房间名，入会链接带管理权限的room token。
type QiniuRTCMeetingProvider struct {
	*qiniurtc.Manager
	conf         utils.QiniuRTCConfig
	frontendHost string
	signer       *qiniuauth.Credentials
	xl           *xlog.Logger
}

func NewQiniuRTCMeetingProvider(conf *utils.Config, xl *xlog.Logger) *QiniuRTCMeetingProvider {
	if xl == nil {
		xl = xlog.New("hire-cube-rtc-meeting")
	}
	p := new(QiniuRTCMeetingProvider)
	if conf.RTC != nil {
		p.conf = *conf.RTC
	}
	p.frontendHost = strings.TrimRight(conf.FrontendUrlHost, "/")
	p.signer = &qiniuauth.Credentials{
		AccessKey: conf.QiniuKeyPair.AccessKey,
		SecretKey: []byte(conf.QiniuKeyPair.SecretKey),
	}
	p.Manager = qiniurtc.NewManager(p.signer)
	p.xl = xl
	color.Blue("qiniu rtc meeting provider ready, app %s", p.conf.AppID)
	return p
}

func (p *QiniuRTCMeetingProvider) CreateMeeting(xl *xlog.Logger, title string, start time.Time, durationMinutes int, attendeeEmails []string) (*scheduling.Meeting, error) {
	if xl == nil {
		xl = p.xl
	}
	roomName := "interview-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	token := p.generateRoomToken(roomName, "admin", start, durationMinutes)
	if token == "" {
		return nil, fmt.Errorf("failed to sign rtc room token")
	}
	link := fmt.Sprintf("%s/meeting/%s?token=%s", p.frontendHost, roomName, token)
	xl.Infof("created rtc meeting room %s for %q", roomName, title)
	return &scheduling.Meeting{
		ID:   roomName,
		Link: link,
	}, nil
}

// CancelMeeting RTC房间按需创建，提前取消只需踢出可能滞留的用户。
func (p *QiniuRTCMeetingProvider) CancelMeeting(xl *xlog.Logger, meetingID string) bool {
	if xl == nil {
		xl = p.xl
	}
	users, err := p.Manager.ListUser(p.conf.AppID, meetingID)
	if err != nil {
		xl.Infof("no users to kick in room %s, error %v", meetingID, err)
		return true
	}
	for _, u := range users {
		if err := p.Manager.KickUser(p.conf.AppID, meetingID, u.UserID); err != nil {
			xl.Errorf("failed to kick user %s from room %s, error %v", u.UserID, meetingID, err)
			return false
		}
	}
	return true
}

func (p *QiniuRTCMeetingProvider) IsAvailable() bool {
	return p.conf.AppID != "" && p.signer.AccessKey != ""
}

func (p *QiniuRTCMeetingProvider) generateRoomToken(roomName, userID string, start time.Time, durationMinutes int) string {
	expire := start.Add(time.Duration(durationMinutes) * time.Minute).Add(DefaultRTCRoomTokenTimeout)
	if p.conf.RoomTokenExpireSecond > 0 {
		expire = start.Add(time.Duration(p.conf.RoomTokenExpireSecond) * time.Second)
	}
	roomAccess := qiniurtc.RoomAccess{
		AppID:      p.conf.AppID,
		RoomName:   roomName,
		UserID:     userID,
		ExpireAt:   expire.Unix(),
		Permission: "admin",
	}
	token, _ := p.GetRoomToken(roomAccess)
	return token
}
