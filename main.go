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

// @title 面试排期API
// @version 1.0
// @description 面试排期与评价API
// @BasePath /v1

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/qiniu/x/log"

	"github.com/solutions/hire-cube/internal/common/utils"
	"github.com/solutions/hire-cube/internal/service/cloud"
	"github.com/solutions/hire-cube/internal/service/db"
	"github.com/solutions/hire-cube/internal/service/scheduling"
	"github.com/solutions/hire-cube/internal/service/task"
	"github.com/solutions/hire-cube/internal/service/web"
)

var (
	configFilePath = "hire-cube.conf"
)

func main() {
	fmt.Println(time.Now())
	flag.StringVar(&configFilePath, "f", configFilePath, "configuration file to run hire-cube server")
	flag.Parse()

	utils.InitConf(configFilePath)
	log.SetOutputLevel(utils.DefaultConf.DebugLevel)
	rand.Seed(time.Now().UnixNano())
	// 启动定时任务
	go func() {
		accountService, err := db.NewAccountService(*utils.DefaultConf.Mongo, utils.DefaultConf.JwtKey, nil)
		if err != nil {
			log.Errorf("failed to create account service for tasks, error %v", err)
			return
		}
		notificationSender, err := cloud.NewNotificationSender(&utils.DefaultConf, nil)
		if err != nil {
			log.Errorf("failed to create notification sender for tasks, error %v", err)
			return
		}
		rules := scheduling.NewRules(utils.DefaultConf.Scheduling)
		interviewTask, err := task.NewInterviewTask(&utils.DefaultConf, accountService, notificationSender, rules)
		if err != nil {
			log.Errorf("failed to create interview task, error %v", err)
			return
		}
		_ = gocron.Every(1).Minutes().Do(interviewTask.TaskForReminder)
		_ = gocron.Every(1).Hours().Do(interviewTask.TaskForExpireStaleInterviews)
		<-gocron.Start()
	}()
	// 启动 gin HTTP server。
	r, err := web.NewRouter(&utils.DefaultConf)
	if err != nil {
		log.Fatalf("failed to create gin HTTP server, error %v", err)
	}

	errch := make(chan error, 1)
	go func() {
		httpServerErr := r.Run(fmt.Sprintf(":%d", utils.DefaultConf.ListenPort))
		errch <- httpServerErr
	}()

	qC := make(chan os.Signal, 1)
	signal.Notify(qC, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-qC:
		log.Info(s.String())
	case err = <-errch:
		log.Error("http server stopped, error", err.Error())
	}
}
