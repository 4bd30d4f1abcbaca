package db

import (
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	dao "github.com/solutions/hire-cube/internal/service/db/dao"
)

// InterviewService 面试与参与者的mongo存取，实现调度层的InterviewRepository。
type InterviewService struct {
	mongoClient     *mgo.Session
	interviewColl   *mgo.Collection
	participantColl *mgo.Collection
	xl              *xlog.Logger
}

// scheduleBuffer 写入前重查冲突时沿用的结束缓冲，与调度层规则保持一致。
const scheduleBuffer = 15 * time.Minute

func NewInterviewService(conf utils.MongoConfig, xl *xlog.Logger) (*InterviewService, error) {
	if xl == nil {
		xl = xlog.New("hire-cube-interview-db")
	}
	mongoClient, err := mgo.Dial(conf.URI)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	interviewColl := mongoClient.DB(conf.Database).C(dao.CollectionInterview)
	participantColl := mongoClient.DB(conf.Database).C(dao.CollectionInterviewParticipant)
	return &InterviewService{
		mongoClient:     mongoClient,
		interviewColl:   interviewColl,
		participantColl: participantColl,
		xl:              xl,
	}, nil
}

// Create 写入面试与全部参与者。写入前按参与者重查一次冲突窗口，
// 把读检查到写入之间被并发占用的时段挡在库外。
func (c *InterviewService) Create(xl *xlog.Logger, interview *model.InterviewDo, participants []model.InterviewParticipantDo) error {
	if xl == nil {
		xl = c.xl
	}
	for _, p := range participants {
		taken, err := c.slotTaken(xl, p.UserID, interview)
		if err != nil {
			xl.Errorf("failed to recheck slot of user %s, error %v", p.UserID, err)
			return err
		}
		if taken {
			xl.Infof("slot of user %s was taken concurrently, reject interview %s", p.UserID, interview.ID)
			return errors2.New(errors2.ServerErrorScheduleConflict, "participant "+p.UserID+" has a conflicting interview")
		}
	}
	err := c.interviewColl.Insert(interview)
	if err != nil {
		xl.Errorf("failed to insert interview %s, error %v", interview.ID, err)
		return err
	}
	for _, p := range participants {
		if err := c.participantColl.Insert(p); err != nil {
			xl.Errorf("failed to insert participant %s of interview %s, error %v", p.UserID, interview.ID, err)
			return err
		}
	}
	xl.Infof("user %s created interview %s with %d participants", interview.Creator, interview.ID, len(participants))
	return nil
}

// slotTaken 该用户是否已有与interview时段重叠（含结束缓冲）的排期。
func (c *InterviewService) slotTaken(xl *xlog.Logger, userID string, interview *model.InterviewDo) (bool, error) {
	existing, err := c.ListScheduledByParticipant(xl, userID)
	if err != nil {
		return false, err
	}
	end := interview.End()
	for _, other := range existing {
		if other.ID == interview.ID {
			continue
		}
		if interview.ScheduledStart.Before(other.End().Add(scheduleBuffer)) && end.After(other.ScheduledStart) {
			return true, nil
		}
	}
	return false, nil
}

// GetInterviewByFields 根据一组 key/value 关系查找面试。
func (c *InterviewService) GetInterviewByFields(xl *xlog.Logger, fields map[string]interface{}) (*model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interview := model.InterviewDo{}
	err := c.interviewColl.Find(fields).One(&interview)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such interview for fields %v", fields)
			return nil, errors2.New(errors2.ServerErrorInterviewNotFound, "no such interview")
		}
		xl.Errorf("failed to get interview, error %v", err)
		return nil, err
	}
	return &interview, nil
}

func (c *InterviewService) Get(xl *xlog.Logger, interviewID string) (*model.InterviewDo, error) {
	return c.GetInterviewByFields(xl, map[string]interface{}{"_id": interviewID})
}

func (c *InterviewService) Update(xl *xlog.Logger, interview *model.InterviewDo) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.interviewColl.Update(bson.M{"_id": interview.ID}, bson.M{"$set": interview})
	if err != nil {
		xl.Errorf("failed to update interview %s, error %v", interview.ID, err)
		return err
	}
	return nil
}

func (c *InterviewService) ListActiveByApplication(xl *xlog.Logger, applicationID string) ([]model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interviews := []model.InterviewDo{}
	err := c.interviewColl.Find(bson.M{"applicationId": applicationID, "active": true}).Sort("round", "scheduledStart").All(&interviews)
	if err != nil {
		xl.Errorf("failed to list interviews of application %s, error %v", applicationID, err)
		return nil, err
	}
	return interviews, nil
}

// ListScheduledByParticipant 经参与者表join出该用户所有已排期的面试。
func (c *InterviewService) ListScheduledByParticipant(xl *xlog.Logger, userID string) ([]model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	participantDos := []model.InterviewParticipantDo{}
	err := c.participantColl.Find(bson.M{"userId": userID}).All(&participantDos)
	if err != nil {
		xl.Errorf("failed to list participant records of user %s, error %v", userID, err)
		return nil, err
	}
	if len(participantDos) == 0 {
		return []model.InterviewDo{}, nil
	}
	interviewIDs := make([]string, 0, len(participantDos))
	for _, p := range participantDos {
		interviewIDs = append(interviewIDs, p.InterviewID)
	}
	interviews := []model.InterviewDo{}
	err = c.interviewColl.Find(bson.M{
		"_id":    bson.M{"$in": interviewIDs},
		"active": true,
		"status": model.InterviewStatusCodeScheduled,
	}).Sort("scheduledStart").All(&interviews)
	if err != nil {
		xl.Errorf("failed to list interviews of user %s, error %v", userID, err)
		return nil, err
	}
	return interviews, nil
}

func (c *InterviewService) Participants(xl *xlog.Logger, interviewID string) ([]model.InterviewParticipantDo, error) {
	if xl == nil {
		xl = c.xl
	}
	participantDos := []model.InterviewParticipantDo{}
	err := c.participantColl.Find(bson.M{"interviewId": interviewID}).All(&participantDos)
	if err != nil {
		xl.Errorf("failed to list participants of interview %s, error %v", interviewID, err)
		return nil, err
	}
	return participantDos, nil
}

// ListByUserPage 分页列出用户参与或创建的面试，按状态与开始时间排序。
func (c *InterviewService) ListByUserPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.InterviewDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	participantDos := []model.InterviewParticipantDo{}
	err := c.participantColl.Find(bson.M{"userId": userID}).All(&participantDos)
	if err != nil {
		xl.Errorf("failed to list participant records of user %s, error %v", userID, err)
		return nil, 0, err
	}
	interviewIDs := make([]string, 0, len(participantDos))
	for _, p := range participantDos {
		interviewIDs = append(interviewIDs, p.InterviewID)
	}
	query := bson.M{
		"active": true,
		"$or": []bson.M{
			{"_id": bson.M{"$in": interviewIDs}},
			{"creator": userID},
		},
	}
	skip := (pageNum - 1) * pageSize
	interviews := []model.InterviewDo{}
	err = c.interviewColl.Find(query).Sort("status", "scheduledStart").Skip(skip).Limit(pageSize).All(&interviews)
	if err != nil {
		xl.Errorf("failed to list interviews of user %s, error %v", userID, err)
		return nil, 0, err
	}
	total, err := c.interviewColl.Find(query).Count()
	if err != nil {
		xl.Errorf("failed to count interviews of user %s, error %v", userID, err)
		return nil, 0, err
	}
	return interviews, total, nil
}

// ListStaleScheduled 开始时间早于deadline且仍处于已排期状态的面试，供过期清扫任务使用。
func (c *InterviewService) ListStaleScheduled(xl *xlog.Logger, deadline time.Time) ([]model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interviews := []model.InterviewDo{}
	err := c.interviewColl.Find(bson.M{
		"active":         true,
		"status":         model.InterviewStatusCodeScheduled,
		"scheduledStart": bson.M{"$lt": deadline},
	}).All(&interviews)
	if err != nil {
		xl.Errorf("failed to list stale interviews, error %v", err)
		return nil, err
	}
	return interviews, nil
}

// ListUpcomingUnreminded 提醒窗口内尚未提醒过的面试，供提醒任务使用。
func (c *InterviewService) ListUpcomingUnreminded(xl *xlog.Logger, from, to time.Time) ([]model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interviews := []model.InterviewDo{}
	err := c.interviewColl.Find(bson.M{
		"active":         true,
		"status":         model.InterviewStatusCodeScheduled,
		"reminded":       false,
		"scheduledStart": bson.M{"$gte": from, "$lte": to},
	}).All(&interviews)
	if err != nil {
		xl.Errorf("failed to list upcoming interviews, error %v", err)
		return nil, err
	}
	return interviews, nil
}
