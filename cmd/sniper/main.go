package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/grpc"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/internal/svc"
	"launch-sniper-sol/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/sniper.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.SniperConfig
	conf.MustLoad(*configFile, &c)
	if err := c.Validate(); err != nil {
		logx.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		logx.Errorf("init logger failed: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		logx.Errorf("init service context failed: %v", err)
		os.Exit(1)
	}
	defer serviceContext.Close()

	sg := zerosvc.NewServiceGroup()

	txChan := make(chan *pb.SubscribeUpdateTransaction, 2048)

	processor := grpc.NewTxProcessor(
		c,
		txChan,
		serviceContext.Dedup,
		serviceContext.Tracker,
		serviceContext.Engine,
		serviceContext.Emitter,
		serviceContext.Metrics,
	)
	sg.Add(processor)

	grpcService, err := grpc.NewGrpcStreamManager(c.Grpc, serviceContext.Metrics, txChan)
	if err != nil {
		logx.Errorf("init grpc stream failed: %v", err)
		os.Exit(1)
	}
	sg.Add(grpcService)

	sg.Add(monitor.NewReporter(serviceContext.Metrics, c.MonitorReportIntervalSec))

	logx.Infof("Starting launch sniper service")

	// 启动服务
	sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Info("Shutting down services...")
	sg.Stop()
}
