// Package config 提供了账本服务统一的配置加载、校验与热更新能力.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wyfcoding/budget/budget"
	"github.com/wyfcoding/budget/datetime"
	"github.com/wyfcoding/budget/logging"
)

// EnvPrefix 是环境变量覆盖配置时使用的前缀，例如 BUDGET_LEDGER_TAX_POLICY.
const EnvPrefix = "BUDGET"

// Config 全局顶级配置结构.
type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"  toml:"ledger"`
	Output  OutputConfig  `mapstructure:"output"  toml:"output"`
	Log     LogConfig     `mapstructure:"log"     toml:"log"`
	Server  ServerConfig  `mapstructure:"server"  toml:"server"`
	GRPC    GRPCConfig    `mapstructure:"grpc"    toml:"grpc"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" toml:"tracing"`
	IDGen   IDGenConfig   `mapstructure:"idgen"   toml:"idgen"`
}

// LedgerConfig 定义账本的时间范围与税率策略.
// 时间范围在账本创建后不可变，热更新只会影响税率策略.
type LedgerConfig struct {
	Start     string `mapstructure:"start"      toml:"start"      validate:"required,datetime=2006-01-02"`
	End       string `mapstructure:"end"        toml:"end"        validate:"required,datetime=2006-01-02"`
	TaxPolicy string `mapstructure:"tax_policy" toml:"tax_policy" validate:"oneof=strict permissive"`
}

// OutputConfig 定义查询结果的输出格式.
type OutputConfig struct {
	Precision int `mapstructure:"precision" toml:"precision" validate:"min=0,max=40"` // 有效数字位数，0 表示最短表示。
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format"      toml:"format"      validate:"oneof=json text"`
	File       string `mapstructure:"file"        toml:"file"`        // 日志文件路径。
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"`    // 单个文件最大大小 (MB)。
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"` // 最大备份数。
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"`     // 最大保留天数。
	Compress   bool   `mapstructure:"compress"    toml:"compress"`    // 是否启用压缩。
}

// ServerConfig 定义 HTTP 服务的监听参数.
type ServerConfig struct {
	Name            string        `mapstructure:"name"             toml:"name"             validate:"required"`
	Addr            string        `mapstructure:"addr"             toml:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     toml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    toml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   toml:"max_body_bytes"   validate:"min=0"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"   toml:"rate_limit_rps"   validate:"min=0"` // 0 表示不限流。
	RateLimitBurst  int           `mapstructure:"rate_limit_burst" toml:"rate_limit_burst" validate:"min=0"`
	AuthSecret      string        `mapstructure:"auth_secret"      toml:"auth_secret"`     // 非空时写接口要求 writer 角色的 JWT。
}

// GRPCConfig 定义 gRPC 健康检查服务.
type GRPCConfig struct {
	Enabled   bool                `mapstructure:"enabled"   toml:"enabled"`
	Addr      string              `mapstructure:"addr"      toml:"addr"      validate:"required_if=Enabled true"`
	Keepalive GRPCKeepaliveConfig `mapstructure:"keepalive" toml:"keepalive"`
}

// GRPCKeepaliveConfig gRPC 连接保活参数.
type GRPCKeepaliveConfig struct {
	MaxConnectionIdle     time.Duration `mapstructure:"max_connection_idle"      toml:"max_connection_idle"`
	MaxConnectionAge      time.Duration `mapstructure:"max_connection_age"       toml:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `mapstructure:"max_connection_age_grace" toml:"max_connection_age_grace"`
	Time                  time.Duration `mapstructure:"time"                     toml:"time"`
	Timeout               time.Duration `mapstructure:"timeout"                  toml:"timeout"`
	MinTime               time.Duration `mapstructure:"min_time"                 toml:"min_time"`
	PermitWithoutStream   bool          `mapstructure:"permit_without_stream"    toml:"permit_without_stream"`
}

// TracingConfig OpenTelemetry 追踪配置. Endpoint 为空时不导出 Span.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"      toml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"     toml:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" toml:"sample_ratio" validate:"min=0,max=1"`
}

// IDGenConfig 请求 ID 生成器配置.
type IDGenConfig struct {
	Type      string `mapstructure:"type"       toml:"type"       validate:"oneof=snowflake sonyflake"`
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id" validate:"min=0,max=65535"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Path    string `mapstructure:"path"    toml:"path"    validate:"required_if=Enabled true"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// LogOptions 把日志配置转换为 logging.Config.
func (c LogConfig) LogOptions(service, module string) logging.Config {
	return logging.Config{
		Service:    service,
		Module:     module,
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// BudgetConfig 把账本配置转换为 budget.Config，并校验时间范围.
func (c LedgerConfig) BudgetConfig() (budget.Config, error) {
	start, err := datetime.ParseDate(c.Start)
	if err != nil {
		return budget.Config{}, err
	}
	end, err := datetime.ParseDate(c.End)
	if err != nil {
		return budget.Config{}, err
	}
	horizon, err := budget.NewHorizon(start, end)
	if err != nil {
		return budget.Config{}, err
	}
	policy, err := budget.ParseTaxPolicy(c.TaxPolicy)
	if err != nil {
		return budget.Config{}, err
	}
	return budget.Config{Horizon: horizon, TaxPolicy: policy}, nil
}

var defaults = map[string]any{
	"ledger.start":      "2000-01-01",
	"ledger.end":        "2100-01-01",
	"ledger.tax_policy": string(budget.TaxPolicyStrict),
	"output.precision":  25,

	"log.level":       "info",
	"log.format":      "json",
	"log.file":        "",
	"log.max_size":    100,
	"log.max_backups": 3,
	"log.max_age":     28,
	"log.compress":    false,

	"server.name":             "budget",
	"server.addr":             ":8080",
	"server.read_timeout":     10 * time.Second,
	"server.write_timeout":    10 * time.Second,
	"server.shutdown_timeout": 5 * time.Second,
	"server.max_body_bytes":   1 << 20,
	"server.rate_limit_rps":   0.0,
	"server.rate_limit_burst": 0,
	"server.auth_secret":      "",

	"grpc.enabled":                       false,
	"grpc.addr":                          ":9090",
	"grpc.keepalive.max_connection_idle": 15 * time.Minute,
	"grpc.keepalive.time":                2 * time.Hour,
	"grpc.keepalive.timeout":             20 * time.Second,
	"grpc.keepalive.min_time":            5 * time.Minute,

	"metrics.enabled":      true,
	"metrics.path":         "/metrics",
	"tracing.enabled":      false,
	"tracing.endpoint":     "",
	"tracing.sample_ratio": 1.0,
	"idgen.type":           "snowflake",
	"idgen.machine_id":     1,
}

var (
	mu        sync.Mutex
	vInstance = viper.New()
	onReload  []func(*Config)
	validate  = validator.New()
)

// Default 返回不读取任何文件与环境变量的默认配置.
func Default() *Config {
	v := newViper()
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Load 加载配置：默认值 < TOML 文件（path 非空时）< BUDGET_ 前缀的环境变量.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	vInstance = v
	mu.Unlock()
	return conf, nil
}

func decode(v *viper.Viper) (*Config, error) {
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := validate.Struct(conf); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := conf.Ledger.BudgetConfig(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return conf, nil
}

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	onReload = append(onReload, hook)
}

// Watch 监听最近一次 Load 的配置文件，变更并校验通过后更新日志级别并依次执行回调.
// 校验失败的变更会被丢弃，沿用旧配置.
func Watch() {
	mu.Lock()
	v := vInstance
	mu.Unlock()

	v.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		applyReload(v)
	})
	v.WatchConfig()
}

func applyReload(v *viper.Viper) {
	conf, err := decode(v)
	if err != nil {
		slog.Error("reload config failed, keeping previous config", "error", err)
		return
	}

	logging.SetLevel(conf.Log.Level)

	mu.Lock()
	hooks := append([]func(*Config){}, onReload...)
	mu.Unlock()
	for _, hook := range hooks {
		hook(conf)
	}
	slog.Info("config hot-reloaded and validated successfully")
}

// GetViper 返回最近一次 Load 使用的 Viper 实例.
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return vInstance
}
