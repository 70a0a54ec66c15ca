package grpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/consts"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

// GrpcStreamManager 维护到 Geyser 的订阅流：
// 只订阅发射台程序相关的交易推送，断流后指数退避无限重连。
type GrpcStreamManager struct {
	mu                    sync.Mutex
	conn                  *grpc.ClientConn
	client                pb.GeyserClient
	stream                pb.Geyser_SubscribeClient
	stopped               bool
	reconnectAttempts     int
	reconnectInterval     time.Duration // 重连基础间隔
	reconnectMaxInterval  time.Duration // 指数退避上限
	xToken                string
	streamPingIntervalSec int
	txChan                chan *pb.SubscribeUpdateTransaction // 交易推送通道
	connCtx               context.Context
	connCancel            context.CancelFunc
	txRecvTimeoutSec      int // 超过该时间未收到交易则触发重连（秒）
	sendTimeoutSec        int
	metrics               *monitor.Metrics
}

func NewGrpcStreamManager(
	grpcConf config.GrpcConfig,
	metrics *monitor.Metrics,
	txChan chan *pb.SubscribeUpdateTransaction,
) (*GrpcStreamManager, error) {
	configTls := &tls.Config{
		InsecureSkipVerify: true,
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(grpcConf.ConnectTimeoutSec)*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		grpcConf.Endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(configTls)),
		grpc.WithInitialWindowSize(int32(grpcConf.InitialWindowSize)),
		grpc.WithInitialConnWindowSize(int32(grpcConf.InitialConnWindowSize)),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(grpcConf.MaxCallSendMsgSize),
			grpc.MaxCallRecvMsgSize(grpcConf.MaxCallRecvMsgSize),
		),
		grpc.WithBlock(),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                time.Duration(grpcConf.KeepalivePingIntervalSec) * time.Second,
			Timeout:             time.Duration(grpcConf.KeepalivePingTimeoutSec) * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	return &GrpcStreamManager{
		conn:                  conn,
		client:                pb.NewGeyserClient(conn),
		reconnectAttempts:     0,
		reconnectInterval:     time.Duration(grpcConf.ReconnectIntervalSec) * time.Second,
		reconnectMaxInterval:  time.Duration(grpcConf.ReconnectMaxIntervalSec) * time.Second,
		xToken:                grpcConf.XToken,
		streamPingIntervalSec: grpcConf.StreamPingIntervalSec,
		txChan:                txChan,
		txRecvTimeoutSec:      grpcConf.TxRecvTimeoutSec,
		sendTimeoutSec:        grpcConf.SendTimeoutSec,
		metrics:               metrics,
	}, nil
}

func (m *GrpcStreamManager) Start() {
	m.mustConnect()
}

func (m *GrpcStreamManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	if m.conn != nil {
		err := m.conn.Close()
		_ = err
	}
}

// 内部循环直到连接成功，退避间隔按次数翻倍并封顶
func (m *GrpcStreamManager) mustConnect() {
	for {
		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		if m.reconnectAttempts > 0 {
			backoff := m.reconnectInterval << (m.reconnectAttempts - 1)
			if backoff > m.reconnectMaxInterval || backoff <= 0 {
				backoff = m.reconnectMaxInterval
			}
			time.Sleep(backoff)
		}
		logger.Infof("connecting... attempt %d", m.reconnectAttempts+1)
		m.reconnectAttempts++
		err := m.connect()
		if err == nil {
			return // 连接成功
		}
		logger.Warnf("connect failed: %v, will retry...", err)
	}
}

// 只订阅发射台程序触达的非 vote、执行成功的交易。
// 用 PROCESSED 级别换最低的推送延迟，确认回滚由去重与幂等外发兜底。
func buildSubscribeRequest() *pb.SubscribeRequest {
	txs := make(map[string]*pb.SubscribeRequestFilterTransactions)
	txs["launchpad"] = &pb.SubscribeRequestFilterTransactions{
		AccountInclude: []string{consts.LaunchpadProgramStr},
		Vote:           boolPtr(false),
		Failed:         boolPtr(false),
	}
	commitment := pb.CommitmentLevel_PROCESSED
	return &pb.SubscribeRequest{
		Transactions: txs,
		Commitment:   &commitment,
	}
}

// connect 只尝试一次连接
func (m *GrpcStreamManager) connect() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return errors.New("manager is stopped")
	}
	defer m.mu.Unlock()

	// 先关闭旧的 context，优雅退出旧 goroutine
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	m.connCtx, m.connCancel = context.WithCancel(context.Background())

	metaCtx := metadata.NewOutgoingContext(
		m.connCtx,
		metadata.New(map[string]string{"x-token": m.xToken}),
	)
	stream, err := m.client.Subscribe(metaCtx)
	if err != nil {
		logger.Warnf("failed to subscribe: %v", err)
		return err
	}

	req := buildSubscribeRequest()
	err = sendWithTimeout(m.connCtx, stream.Send, req, time.Duration(m.sendTimeoutSec)*time.Second)
	if err != nil {
		logger.Warnf("failed to send subscribe request: %v", err)
		return err
	}

	m.stream = stream
	m.reconnectAttempts = 0
	logger.Infof("grpc stream established, endpoint filter: %s", consts.LaunchpadProgramStr)

	// 启动 ping 协程
	go m.pingLoop(m.connCtx)
	// 启动交易监听协程
	go m.txRecvLoop(m.connCtx)

	return nil
}

func (m *GrpcStreamManager) txRecvLoop(ctx context.Context) {
	last := time.Now()
	txTimeout := time.Duration(m.txRecvTimeoutSec) * time.Second
	for {
		select {
		case <-ctx.Done():
			return // 优雅退出
		default:
			update, err := m.stream.Recv()
			now := time.Now()
			if err != nil {
				if errors.Is(err, io.EOF) {
					logger.Warnf("stream closed by server (EOF), will reconnect")
					m.reconnect()
					return
				}

				logger.Warnf("stream error: %v", err)
				if m.reconnectIfTxTimeout(last, txTimeout) {
					return
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}

			switch u := update.GetUpdateOneof().(type) {
			case *pb.SubscribeUpdate_Transaction:
				m.metrics.IncUpdatesReceived()
				m.metrics.TouchActivity()

				select {
				case m.txChan <- u.Transaction:
				default:
					// 下游拥塞时丢弃：迟到的交易对狙击没有价值
					logger.Warnf("txChan is full, discard tx at slot %d", u.Transaction.Slot)
				}
				last = now
			case *pb.SubscribeUpdate_Ping:
				// 服务端 pong，无需处理
			}
		}

		if m.reconnectIfTxTimeout(last, txTimeout) {
			return
		}
	}
}

// 带超时的 Send
func sendWithTimeout[T any](ctx context.Context, sendFunc func(T) error, req T, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sendFunc(req)
	}()

	select {
	case <-timeoutCtx.Done():
		return timeoutCtx.Err()
	case err := <-done:
		return err
	}
}

// 心跳检测
func (m *GrpcStreamManager) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(m.streamPingIntervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return // 优雅退出
		case <-ticker.C:
			pingReq := &pb.SubscribeRequest{
				Ping: &pb.SubscribeRequestPing{Id: 1},
			}
			err := sendWithTimeout(ctx, m.stream.Send, pingReq, time.Duration(m.sendTimeoutSec)*time.Second)
			if err != nil {
				logger.Warnf("ping failed: %v", err)
				// 这里只记录日志，不触发重连
			}
		}
	}
}

func (m *GrpcStreamManager) reconnectIfTxTimeout(last time.Time, timeout time.Duration) bool {
	if time.Since(last) > timeout {
		logger.Warnf("no tx received in %v, trigger reconnect", timeout)
		m.reconnect()
		return true
	}
	return false
}

func (m *GrpcStreamManager) reconnect() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	if m.connCancel != nil {
		m.connCancel() // 关闭所有相关 goroutine
		m.connCancel = nil
	}
	m.mu.Unlock()

	go m.mustConnect()
}

func boolPtr(b bool) *bool {
	return &b
}
