package main

import (
	"flag"
	"runtime/debug"

	"blink-builder-sol/internal/config"
	"blink-builder-sol/internal/handler"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/pkg/logger"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/api.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.Logger.ToLogOption()); err != nil {
		logx.Must(err)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	logx.Must(err)
	defer serviceContext.Close()

	server := rest.MustNewServer(c.RestConf)
	handler.RegisterHandlers(server, serviceContext)

	sg := zerosvc.NewServiceGroup()
	defer sg.Stop()
	sg.Add(server)

	logx.Infof("Starting blink action server at %s:%d, network=%s", c.Host, c.Port, c.Network)
	// 阻塞直到收到退出信号
	sg.Start()
}
