package dao

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	"github.com/solutions/hire-cube/internal/protodef/model"
	"github.com/solutions/hire-cube/internal/service/db/dao"
)

type EvaluationDao interface {
	Insert(xl *xlog.Logger, evaluation *model.EvaluationDo) error

	Get(xl *xlog.Logger, interviewID, evaluatorID string) (*model.EvaluationDo, error)

	ListByInterview(xl *xlog.Logger, interviewID string) ([]model.EvaluationDo, error)

	ListByEvaluator(xl *xlog.Logger, evaluatorID string) ([]model.EvaluationDo, error)

	Update(xl *xlog.Logger, evaluation *model.EvaluationDo) error

	Delete(xl *xlog.Logger, interviewID, evaluatorID string) error
}

type EvaluationDaoService struct {
	collection *mongo.Collection
	logger     *xlog.Logger
}

func NewEvaluationDaoService(config *utils.MongoConfig) *EvaluationDaoService {
	logger := xlog.New("evaluation dao service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		panic(err)
	}
	collection := client.Database(config.Database).Collection(dao.CollectionEvaluation)
	return &EvaluationDaoService{
		collection,
		logger,
	}
}

// Insert 写入一条评价。_id为interviewId_evaluatorId，重复提交会触发唯一键冲突。
func (e *EvaluationDaoService) Insert(xl *xlog.Logger, evaluation *model.EvaluationDo) error {
	if xl == nil {
		xl = e.logger
	}
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := e.collection.InsertOne(timeout, evaluation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			xl.Infof("evaluation %s already exists", evaluation.ID)
			return errors2.New(errors2.ServerErrorEvaluationAlreadyExists, "evaluation already exists")
		}
		xl.Errorf("插入评价失败: %v", err)
		return errors.Wrap(err, "insert evaluation")
	}
	return nil
}

func (e *EvaluationDaoService) Get(xl *xlog.Logger, interviewID, evaluatorID string) (*model.EvaluationDo, error) {
	if xl == nil {
		xl = e.logger
	}
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	one := e.collection.FindOne(timeout, primitive.M{"_id": interviewID + "_" + evaluatorID})
	if err := one.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors2.New(errors2.ServerErrorEvaluationNotFound, "no such evaluation")
		}
		xl.Errorf("查询评价失败: %v", err)
		return nil, errors.Wrap(err, "get evaluation")
	}
	result := model.EvaluationDo{}
	err := one.Decode(&result)
	if err != nil {
		xl.Error(err)
		return nil, errors.Wrap(err, "decode evaluation")
	}
	return &result, nil
}

func (e *EvaluationDaoService) ListByInterview(xl *xlog.Logger, interviewID string) ([]model.EvaluationDo, error) {
	return e.list(xl, primitive.M{"interviewId": interviewID})
}

func (e *EvaluationDaoService) ListByEvaluator(xl *xlog.Logger, evaluatorID string) ([]model.EvaluationDo, error) {
	return e.list(xl, primitive.M{"evaluatorId": evaluatorID})
}

func (e *EvaluationDaoService) list(xl *xlog.Logger, filter primitive.M) ([]model.EvaluationDo, error) {
	if xl == nil {
		xl = e.logger
	}
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	cursor, err := e.collection.Find(timeout, filter, &options.FindOptions{
		Sort: primitive.M{"createTime": 1},
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		xl.Error(err)
		return nil, errors.Wrap(err, "list evaluations")
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		err := cursor.Close(ctx)
		if err != nil {
			xl.Error(err)
		}
	}(cursor, timeout)
	results := make([]model.EvaluationDo, 0, 10)
	for cursor.Next(timeout) {
		tmp := model.EvaluationDo{}
		err := cursor.Decode(&tmp)
		if err != nil {
			xl.Error(err)
			return nil, errors.Wrap(err, "decode evaluation")
		}
		results = append(results, tmp)
	}
	if err := cursor.Err(); err != nil {
		xl.Error(err)
		return nil, errors.Wrap(err, "iterate evaluations")
	}
	return results, nil
}

func (e *EvaluationDaoService) Update(xl *xlog.Logger, evaluation *model.EvaluationDo) error {
	if xl == nil {
		xl = e.logger
	}
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	result, err := e.collection.UpdateOne(timeout, primitive.M{"_id": evaluation.ID}, primitive.M{"$set": evaluation})
	if err != nil {
		xl.Errorf("更新评价失败: %v", err)
		return errors.Wrap(err, "update evaluation")
	}
	if result.MatchedCount == 0 {
		return errors2.New(errors2.ServerErrorEvaluationNotFound, "no such evaluation")
	}
	return nil
}

func (e *EvaluationDaoService) Delete(xl *xlog.Logger, interviewID, evaluatorID string) error {
	if xl == nil {
		xl = e.logger
	}
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := e.collection.DeleteOne(timeout, primitive.M{"_id": interviewID + "_" + evaluatorID})
	if err != nil {
		xl.Errorf("删除评价失败: %v", err)
		return errors.Wrap(err, "delete evaluation")
	}
	return nil
}
