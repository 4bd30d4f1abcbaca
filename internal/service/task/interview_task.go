package task

import (
	"fmt"
	"time"

	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/hire-cube/internal/common/utils"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	dao "github.com/solutions/hire-cube/internal/service/db/dao"
	"github.com/solutions/hire-cube/internal/service/scheduling"
)

// InterviewTask 面试排期的批处理任务：开场前提醒与过期排期清理。
// 任务持有独立的mongo会话，不与请求路径共用连接。
type InterviewTask struct {
	mongoClient     *mgo.Session
	interviewColl   *mgo.Collection
	participantColl *mgo.Collection
	applicationColl *mgo.Collection
	directory       scheduling.ParticipantDirectory
	notifier        scheduling.NotificationSender
	rules           scheduling.Rules
	expireAfter     time.Duration
	xl              *xlog.Logger
}

// DefaultExpireAfter 已排期面试开始后多久仍无人处理则批量置为缺席。
const DefaultExpireAfter = 24 * time.Hour

func NewInterviewTask(conf *utils.Config, directory scheduling.ParticipantDirectory,
	notifier scheduling.NotificationSender, rules scheduling.Rules) (*InterviewTask, error) {
	mongoClient, err := mgo.Dial(conf.Mongo.URI)
	if err != nil {
		log.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	expireAfter := DefaultExpireAfter
	if conf.Scheduling != nil && conf.Scheduling.ExpireAfterHours > 0 {
		expireAfter = time.Duration(conf.Scheduling.ExpireAfterHours) * time.Hour
	}
	database := conf.Mongo.Database
	return &InterviewTask{
		mongoClient:     mongoClient,
		interviewColl:   mongoClient.DB(database).C(dao.CollectionInterview),
		participantColl: mongoClient.DB(database).C(dao.CollectionInterviewParticipant),
		applicationColl: mongoClient.DB(database).C(dao.CollectionApplication),
		directory:       directory,
		notifier:        notifier,
		rules:           rules,
		expireAfter:     expireAfter,
		xl:              xlog.New("hire-cube-interview-task"),
	}, nil
}

// TaskForReminder 给提醒窗口内尚未提醒过的面试发送开场提醒。
// 发送后置位reminded，窗口内重复运行不会重复打扰。
func (t *InterviewTask) TaskForReminder() {
	log.Infof("taskForReminder run at %s", time.Now().String())
	now := time.Now()
	interviews := []model.InterviewDo{}
	err := t.interviewColl.Find(bson.M{
		"active":         true,
		"status":         model.InterviewStatusCodeScheduled,
		"reminded":       false,
		"scheduledStart": bson.M{"$gte": now, "$lte": now.Add(t.rules.ReminderLead)},
	}).All(&interviews)
	if err != nil {
		log.Errorf("TaskForReminder find interviews, error: %v", err)
		return
	}
	if len(interviews) <= 0 {
		return
	}
	for _, interview := range interviews {
		t.remind(&interview)
		err := t.interviewColl.Update(bson.M{"_id": interview.ID}, bson.M{"$set": bson.M{"reminded": true}})
		if err != nil {
			log.Errorf("TaskForReminder mark interview %s, error %v", interview.ID, err)
		}
	}
	log.Infof("taskForReminder reminded %d interviews", len(interviews))
}

// remind 面试参与者与候选人都会收到提醒。
func (t *InterviewTask) remind(interview *model.InterviewDo) {
	recipients := make([]string, 0)
	participants := []model.InterviewParticipantDo{}
	err := t.participantColl.Find(bson.M{"interviewId": interview.ID}).All(&participants)
	if err != nil {
		log.Errorf("TaskForReminder list participants of %s, error %v", interview.ID, err)
	}
	for _, p := range participants {
		recipients = append(recipients, p.UserID)
	}
	application := model.ApplicationDo{}
	err = t.applicationColl.Find(bson.M{"_id": interview.ApplicationID}).One(&application)
	if err != nil {
		log.Errorf("TaskForReminder load application %s, error %v", interview.ApplicationID, err)
	} else {
		recipients = append(recipients, application.CandidateID)
	}
	for _, userID := range recipients {
		user, err := t.directory.ResolveUser(t.xl, userID)
		if err != nil {
			log.Infof("TaskForReminder cannot resolve user %s, error %v", userID, err)
			continue
		}
		if err := t.notifier.NotifyReminder(t.xl, *user, interview, nil); err != nil {
			log.Errorf("TaskForReminder notify %s for interview %s, error %v", userID, interview.ID, err)
		}
	}
}

// TaskForExpireStaleInterviews 长期停留在已排期状态的过期面试批量置为缺席。
func (t *InterviewTask) TaskForExpireStaleInterviews() {
	log.Infof("taskForExpireStaleInterviews run at %s", time.Now().String())
	deadline := time.Now().Add(-t.expireAfter)
	interviews := []model.InterviewDo{}
	err := t.interviewColl.Find(bson.M{
		"active":         true,
		"status":         model.InterviewStatusCodeScheduled,
		"scheduledStart": bson.M{"$lt": deadline},
	}).Sort("scheduledStart").Limit(50).All(&interviews)
	if err != nil {
		log.Errorf("TaskForExpireStaleInterviews find interviews, error: %v", err)
		return
	}
	for _, interview := range interviews {
		log.Infof("TaskForExpireStaleInterviews expire interview %s scheduled at %s", interview.ID, interview.ScheduledStart)
		now := time.Now()
		note := model.InterviewNoteDo{
			Time:    now,
			ActorID: "system",
			Content: fmt.Sprintf("expired: still scheduled %s after its start", t.expireAfter),
		}
		err := t.interviewColl.Update(bson.M{"_id": interview.ID}, bson.M{
			"$set":  bson.M{"status": model.InterviewStatusCodeNoShow, "updateTime": now, "updator": "system"},
			"$push": bson.M{"notes": note},
		})
		if err != nil {
			log.Errorf("TaskForExpireStaleInterviews modify err, %v", err)
		}
	}
}
