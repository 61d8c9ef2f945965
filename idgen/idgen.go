// Package idgen 提供请求 ID 等唯一 ID 的生成器，支持 Snowflake 与 Sonyflake 两种算法.
package idgen

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sony/sonyflake"

	"github.com/wyfcoding/budget/datetime"
)

var (
	// ErrUnsupportedType 不支持的 ID 生成器类型.
	ErrUnsupportedType = errors.New("unsupported id generator type")
	// ErrCreateNode 创建 Snowflake 节点失败.
	ErrCreateNode = errors.New("failed to create snowflake node")
	// ErrCreateSonyflake 创建 Sonyflake 实例失败.
	ErrCreateSonyflake = errors.New("failed to create sonyflake instance")
	// ErrInvalidMachineID 错误的机器 ID.
	ErrInvalidMachineID = errors.New("machine_id must be between 0 and 65535")
)

const maxRetries = 3

// Config 生成器配置.
type Config struct {
	Type      string // snowflake（默认）或 sonyflake
	MachineID int64
	StartTime string // YYYY-MM-DD，为空使用算法默认纪元
}

// Generator 定义 ID 生成器接口.
type Generator interface {
	Generate() int64
}

// SnowflakeGenerator 使用雪花算法：每毫秒 4096 个 ID，最多 1024 个节点.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator 创建一个新的 SnowflakeGenerator.
func NewSnowflakeGenerator(cfg Config) (*SnowflakeGenerator, error) {
	if cfg.StartTime != "" {
		st, err := datetime.ParseDate(cfg.StartTime)
		if err != nil {
			return nil, err
		}
		snowflake.Epoch = st.UnixMilli()
	}

	node, err := snowflake.NewNode(cfg.MachineID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateNode, err)
	}

	slog.Debug("snowflake generator initialized", "machine_id", cfg.MachineID, "epoch", snowflake.Epoch)
	return &SnowflakeGenerator{node: node}, nil
}

// Generate 生成一个新的 ID.
func (g *SnowflakeGenerator) Generate() int64 {
	return g.node.Generate().Int64()
}

// SonyflakeGenerator 使用 Sonyflake 算法：每 10 毫秒 256 个 ID，最多 65536 个节点.
type SonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflakeGenerator 创建一个新的 SonyflakeGenerator.
func NewSonyflakeGenerator(cfg Config) (*SonyflakeGenerator, error) {
	startTime := datetime.Date(2020, time.January, 1)
	if cfg.StartTime != "" {
		st, err := datetime.ParseDate(cfg.StartTime)
		if err != nil {
			return nil, err
		}
		startTime = st
	}

	if cfg.MachineID < 0 || cfg.MachineID > 65535 {
		return nil, ErrInvalidMachineID
	}
	machineID := uint16(cfg.MachineID)

	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: startTime,
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateSonyflake, err)
	}

	slog.Debug("sonyflake generator initialized", "machine_id", cfg.MachineID, "start_time", startTime)
	return &SonyflakeGenerator{sf: sf}, nil
}

// Generate 生成一个新的 ID，连续失败时返回 0.
func (g *SonyflakeGenerator) Generate() int64 {
	for i := range maxRetries {
		id, err := g.sf.NextID()
		if err == nil {
			return int64(id & 0x7FFFFFFFFFFFFFFF)
		}

		slog.Warn("sonyflake generator failed, retrying", "retry", i+1, "error", err)
		time.Sleep(10 * time.Millisecond)
	}

	slog.Error("sonyflake generator failed after multiple retries")
	return 0
}

// NewGenerator 根据配置创建对应类型的 ID 生成器.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Type {
	case "sonyflake":
		return NewSonyflakeGenerator(cfg)
	case "snowflake", "":
		return NewSnowflakeGenerator(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, cfg.Type)
	}
}

var (
	defaultGenerator Generator
	once             sync.Once
)

// Init 初始化全局默认生成器，只有第一次调用生效.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		defaultGenerator, err = NewGenerator(cfg)
	})
	return err
}

// Default 返回全局默认生成器，未初始化时使用 1 号节点的 Snowflake.
func Default() Generator {
	if err := Init(Config{MachineID: 1}); err != nil {
		slog.Error("failed to initialize default id generator", "error", err)
	}
	return defaultGenerator
}

// GenIDString 使用默认生成器生成十进制字符串 ID.
func GenIDString() string {
	return strconv.FormatInt(Default().Generate(), 10)
}
