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

// ApplicationService 投递单的读取与状态推进，实现调度层的ApplicationRepository。
type ApplicationService struct {
	mongoClient     *mgo.Session
	applicationColl *mgo.Collection
	xl              *xlog.Logger
}

func NewApplicationService(conf utils.MongoConfig, xl *xlog.Logger) (*ApplicationService, error) {
	if xl == nil {
		xl = xlog.New("hire-cube-application-db")
	}
	mongoClient, err := mgo.Dial(conf.URI)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	applicationColl := mongoClient.DB(conf.Database).C(dao.CollectionApplication)
	return &ApplicationService{
		mongoClient:     mongoClient,
		applicationColl: applicationColl,
		xl:              xl,
	}, nil
}

func (c *ApplicationService) Get(xl *xlog.Logger, applicationID string) (*model.ApplicationDo, error) {
	if xl == nil {
		xl = c.xl
	}
	application := model.ApplicationDo{}
	err := c.applicationColl.Find(bson.M{"_id": applicationID}).One(&application)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such application %s", applicationID)
			return nil, errors2.New(errors2.ServerErrorApplicationNotFound, "no such application")
		}
		xl.Errorf("failed to get application %s, error %v", applicationID, err)
		return nil, err
	}
	return &application, nil
}

// CreateApplication 创建投递单，初始状态记入流转历史。
func (c *ApplicationService) CreateApplication(xl *xlog.Logger, application *model.ApplicationDo) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	application.CreateTime = now
	application.UpdateTime = now
	if application.Status == "" {
		application.Status = model.ApplicationStatusApplied
	}
	application.StatusHistory = append(application.StatusHistory, model.ApplicationStatusChangeDo{
		Time: now,
		To:   application.Status,
	})
	err := c.applicationColl.Insert(application)
	if err != nil {
		xl.Errorf("failed to insert application %s, error %v", application.ID, err)
		return err
	}
	return nil
}

// UpdateStatus 推进投递单状态并追加一条流转记录。
func (c *ApplicationService) UpdateStatus(xl *xlog.Logger, applicationID string, status model.ApplicationStatus, actorID, comment string) error {
	if xl == nil {
		xl = c.xl
	}
	application, err := c.Get(xl, applicationID)
	if err != nil {
		return err
	}
	if application.Status == status {
		return nil
	}
	change := model.ApplicationStatusChangeDo{
		Time:    time.Now(),
		From:    application.Status,
		To:      status,
		ActorID: actorID,
		Comment: comment,
	}
	err = c.applicationColl.Update(bson.M{"_id": applicationID}, bson.M{
		"$set":  bson.M{"status": status, "updateTime": change.Time},
		"$push": bson.M{"statusHistory": change},
	})
	if err != nil {
		xl.Errorf("failed to update status of application %s, error %v", applicationID, err)
		return err
	}
	xl.Infof("application %s moved from %s to %s by %s", applicationID, change.From, status, actorID)
	return nil
}

// ListByRecruiter 列出某招聘负责人名下的全部投递单。
func (c *ApplicationService) ListByRecruiter(xl *xlog.Logger, recruiterID string) ([]model.ApplicationDo, error) {
	if xl == nil {
		xl = c.xl
	}
	applications := []model.ApplicationDo{}
	err := c.applicationColl.Find(bson.M{"recruiterId": recruiterID}).Sort("-updateTime").All(&applications)
	if err != nil {
		xl.Errorf("failed to list applications of recruiter %s, error %v", recruiterID, err)
		return nil, err
	}
	return applications, nil
}
