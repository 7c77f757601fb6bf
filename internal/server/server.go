package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/config"
	"github.com/palemoky/checkers-duel/internal/game/registry"
	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/server/handler"
	"github.com/palemoky/checkers-duel/internal/server/storage"
	"github.com/palemoky/checkers-duel/internal/types"
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未启用 Redis 时为 nil
	redisStore  *storage.RedisStore
	leaderboard *storage.Leaderboard
	registry    *registry.Registry
	seats       types.SeatLookup
	roomManager *room.RoomManager
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server
	ctx         context.Context // 后台循环的生命周期
	cancel      context.CancelFunc
	background  sync.WaitGroup

	// 安全组件
	originChecker *OriginChecker
	budget        *MessageBudget

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	var rdb *redis.Client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// 测试 Redis 连接
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
	}

	s := newServer(cfg, rdb)
	if s.redisStore != nil {
		// 快照只做镜像，上一个进程留下的不会被恢复
		purged, err := s.redisStore.PurgeRooms(ctx)
		if err != nil {
			logger.L().Warn("⚠️ 清理遗留房间快照失败", zap.Error(err))
		} else if purged > 0 {
			logger.L().Info("🧹 已清理遗留房间快照", zap.Int("count", purged))
		}
	}
	return s, nil
}

// newServer 组装服务器，rdb 可为 nil
func newServer(cfg *config.Config, rdb *redis.Client) *Server {
	s := &Server{
		config:         cfg,
		redis:          rdb,
		registry:       registry.New(),
		clients:        make(map[string]*Client),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		budget:         NewMessageBudget(cfg.Security.MessageLimit),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.seats = s.registry
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	roomDeps := room.RoomManagerDeps{
		Lobby:             s,
		Registry:          s.registry,
		TurnTimeout:       cfg.Game.TurnTimeoutDuration(),
		DisconnectTimeout: cfg.Game.DisconnectTimeoutDuration(),
	}
	handlerDeps := handler.HandlerDeps{Server: s}

	// 接口字段只在 Redis 可用时赋值，避免带类型的 nil
	if rdb != nil {
		s.redisStore = storage.NewRedisStore(rdb, cfg.Redis.SnapshotTTLDuration())
		s.leaderboard = storage.NewLeaderboard(rdb)
		roomDeps.Store = s.redisStore
		roomDeps.Results = s.leaderboard
		handlerDeps.Leaderboard = s.leaderboard
	}

	s.roomManager = room.NewRoomManager(roomDeps)
	handlerDeps.RoomManager = s.roomManager
	s.handler = handler.NewHandler(handlerDeps)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.L().Info("🔒 安全配置",
		zap.Int("message_limit", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("board_cost", cfg.Security.MessageLimit.BoardCost),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Strings("allowed_origins", cfg.Security.AllowedOrigins),
		zap.Bool("redis", rdb != nil))

	return s
}

// Handler 返回 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Start 启动计时循环、监控和 HTTP 服务，阻塞直到服务关闭
func (s *Server) Start() error {
	s.startBackground()

	logger.L().Info("🚀 服务器启动", zap.String("addr", "ws://"+s.httpServer.Addr+"/ws"), zap.Int("cpus", runtime.NumCPU()))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startBackground 启动 1 Hz 计时循环和状态监控
func (s *Server) startBackground() {
	s.background.Add(2)
	go func() {
		defer s.background.Done()
		s.roomManager.RunTimerLoop(s.ctx, s.config.Game.TickIntervalDuration())
	}()
	go func() {
		defer s.background.Done()
		s.monitorStats(s.ctx)
	}()
}
