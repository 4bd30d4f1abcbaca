package db

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/hire-cube/internal/common/utils"
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
	model "github.com/solutions/hire-cube/internal/protodef/model"
	dao "github.com/solutions/hire-cube/internal/service/db/dao"
)

// AccountService 用户账号、登录态与角色查询，同时充当调度层的用户目录。
type AccountService struct {
	mongoClient      *mgo.Session
	accountColl      *mgo.Collection
	accountTokenColl *mgo.Collection
	jwtKey           []byte
	xl               *xlog.Logger
}

func NewAccountService(conf utils.MongoConfig, jwtKey string, xl *xlog.Logger) (*AccountService, error) {
	if xl == nil {
		xl = xlog.New("hire-cube-account-db")
	}
	mongoClient, err := mgo.Dial(conf.URI)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	accountColl := mongoClient.DB(conf.Database).C(dao.CollectionAccount)
	accountTokenColl := mongoClient.DB(conf.Database).C(dao.CollectionAccountToken)
	return &AccountService{
		mongoClient:      mongoClient,
		accountColl:      accountColl,
		accountTokenColl: accountTokenColl,
		jwtKey:           []byte(jwtKey),
		xl:               xl,
	}, nil
}

// CreateAccount 创建用户账号。
func (c *AccountService) CreateAccount(xl *xlog.Logger, account *model.AccountDo) error {
	if xl == nil {
		xl = c.xl
	}
	account.RegisterTime = time.Now()
	err := c.accountColl.Insert(account)
	if err != nil {
		xl.Errorf("failed to insert user, error %v", err)
		return err
	}
	return nil
}

// GetAccountByID 使用ID查找账号。
func (c *AccountService) GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error) {
	return c.GetAccountByFields(xl, map[string]interface{}{"_id": id})
}

// GetAccountByEmail 使用邮箱查找账号。
func (c *AccountService) GetAccountByEmail(xl *xlog.Logger, email string) (*model.AccountDo, error) {
	return c.GetAccountByFields(xl, map[string]interface{}{"email": email})
}

// GetAccountByFields 根据一组key/value关系查找用户账号。
func (c *AccountService) GetAccountByFields(xl *xlog.Logger, fields map[string]interface{}) (*model.AccountDo, error) {
	if xl == nil {
		xl = c.xl
	}
	account := model.AccountDo{}
	err := c.accountColl.Find(fields).One(&account)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such user for fields %v", fields)
			return nil, errors2.New(errors2.ServerErrorUserNotFound, "no such user")
		}
		xl.Errorf("failed to get user, error %v", err)
		return nil, err
	}
	return &account, nil
}

// UpdateAccount 更新用户信息，仅覆盖非空字段。
func (c *AccountService) UpdateAccount(xl *xlog.Logger, id string, newAccount *model.AccountDo) (*model.AccountDo, error) {
	if xl == nil {
		xl = c.xl
	}
	account, err := c.GetAccountByID(xl, id)
	if err != nil {
		return nil, err
	}
	if newAccount.Nickname != "" {
		account.Nickname = newAccount.Nickname
	}
	if newAccount.Email != "" {
		account.Email = newAccount.Email
	}
	err = c.accountColl.Update(bson.M{"_id": id}, bson.M{"$set": account})
	if err != nil {
		xl.Errorf("failed to update account %s, error %v", id, err)
		return nil, err
	}
	return account, nil
}

// ResolveUser 把账号解析为用户摘要，调度层据此发通知、列可用性。
func (c *AccountService) ResolveUser(xl *xlog.Logger, userID string) (*model.UserInfo, error) {
	account, err := c.GetAccountByID(xl, userID)
	if err != nil {
		return nil, err
	}
	displayName := account.Nickname
	if displayName == "" {
		displayName = account.ID
	}
	return &model.UserInfo{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: displayName,
	}, nil
}

// GetRoles 账号的角色列表，授权检查依据。
func (c *AccountService) GetRoles(xl *xlog.Logger, userID string) ([]string, error) {
	account, err := c.GetAccountByID(xl, userID)
	if err != nil {
		return nil, err
	}
	return account.Roles, nil
}

// AccountLogin 设置某个账号为已登录状态。
func (c *AccountService) AccountLogin(xl *xlog.Logger, userID string) (user *model.AccountTokenDo, err error) {
	if xl == nil {
		xl = c.xl
	}
	account, err := c.GetAccountByID(xl, userID)
	if err != nil {
		xl.Errorf("AccountLogin: failed to find account %s", userID)
		return nil, err
	}
	// 查看是否已经登录。
	activeUser := &model.AccountTokenDo{
		ID:        userID,
		AccountId: userID,
	}
	err = c.accountTokenColl.Find(map[string]interface{}{"_id": userID}).One(activeUser)
	if err != nil {
		if err != mgo.ErrNotFound {
			xl.Errorf("failed to check logged in users in mongo, error %v", err)
			return nil, err
		}
	} else {
		xl.Infof("user %s has been already logged in, the old session will be invalid", userID)
	}
	activeUser.Token = c.makeLoginToken(xl, account)
	activeUser.LastModifyTime = time.Now()
	_, err = c.accountTokenColl.Upsert(bson.M{"_id": userID}, activeUser)
	if err != nil {
		xl.Errorf("failed to update or insert user login record, error %v", err)
		return nil, err
	}
	// 更新最后登录时间失败不影响正常返回。
	err = c.accountColl.Update(bson.M{"_id": userID}, bson.M{"$set": bson.M{"lastLoginTime": time.Now()}})
	if err != nil {
		xl.Errorf("failed to update user %s login time, error %v", userID, err)
	}
	return activeUser, nil
}

func (c *AccountService) makeLoginToken(xl *xlog.Logger, account *model.AccountDo) string {
	if xl == nil {
		xl = c.xl
	}
	claims := jwt.MapClaims{
		"userID":    account.ID,
		"timestamp": time.Now().UnixNano(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := t.SignedString(c.jwtKey)
	return token
}

// AccountLogout 用户退出登录。
func (c *AccountService) AccountLogout(xl *xlog.Logger, userID string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.accountTokenColl.RemoveId(userID)
	if err != nil {
		xl.Errorf("failed to remove user ID %s in logged in users, error %v", userID, err)
		return err
	}
	return nil
}

// GetIDByToken 根据token获取账号ID。如果未在已登录用户表查找到这个token，说明该token不合法。
func (c *AccountService) GetIDByToken(xl *xlog.Logger, token string) (id string, err error) {
	if xl == nil {
		xl = c.xl
	}
	accountTokenRecord := &model.AccountTokenDo{}
	err = c.accountTokenColl.Find(map[string]interface{}{"token": token}).One(accountTokenRecord)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("token not found in active users")
			return "", err
		}
		xl.Errorf("failed to find token in active users, error %v", err)
		return "", err
	}
	return accountTokenRecord.ID, nil
}
