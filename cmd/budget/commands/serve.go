package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyfcoding/budget/app"
	"github.com/wyfcoding/budget/budget"
	"github.com/wyfcoding/budget/config"
	"github.com/wyfcoding/budget/idgen"
	"github.com/wyfcoding/budget/logging"
	"github.com/wyfcoding/budget/metrics"
	"github.com/wyfcoding/budget/middleware"
	"github.com/wyfcoding/budget/server"
	"github.com/wyfcoding/budget/service"
	"github.com/wyfcoding/budget/tracing"
)

// ServeOptions serve 命令的参数。
type ServeOptions struct {
	ConfigPath string
	Addr       string
}

// NewServeCommand 创建 serve 命令：以 HTTP（可选 gRPC 健康检查）提供账本服务，直到收到 SIGINT/SIGTERM。
func NewServeCommand() *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			application, err := newServeApp(opts)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML config file (watched for changes)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address, overrides server.addr")

	return cmd
}

// newServeApp 按配置组装日志、ID 生成器、追踪、指标、账本服务与服务器。
// 配置热更新只会切换税率策略，时间范围的变更需要重启。
func newServeApp(opts ServeOptions) (*app.App, error) {
	conf, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Addr != "" {
		conf.Server.Addr = opts.Addr
	}

	name := conf.Server.Name
	logger := logging.InitLogger(conf.Log.LogOptions(name, "serve"))

	if err := idgen.Init(idgen.Config{Type: conf.IDGen.Type, MachineID: conf.IDGen.MachineID}); err != nil {
		return nil, err
	}

	var cleanups []app.Option
	if conf.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Config{
			ServiceName: name,
			Endpoint:    conf.Tracing.Endpoint,
			SampleRatio: conf.Tracing.SampleRatio,
		})
		if err != nil {
			return nil, err
		}
		cleanups = append(cleanups, app.WithCleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}))
	}

	var m *metrics.Metrics
	if conf.Metrics.Enabled {
		m = metrics.NewMetrics(name)
		m.RegisterBuildInfo(name, Version, Commit)
	}

	ledgerConf, err := conf.Ledger.BudgetConfig()
	if err != nil {
		return nil, err
	}
	svc, err := service.New(ledgerConf, m, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("ledger ready", "horizon", ledgerConf.Horizon.String(), "days", ledgerConf.Horizon.DayCount(), "tax_policy", ledgerConf.TaxPolicy)

	config.RegisterReloadHook(func(c *config.Config) {
		if c.Ledger.Start != conf.Ledger.Start || c.Ledger.End != conf.Ledger.End {
			logger.Warn("ledger horizon cannot change at runtime, restart to apply", "start", c.Ledger.Start, "end", c.Ledger.End)
		}
		if err := svc.SetTaxPolicy(budget.TaxPolicy(c.Ledger.TaxPolicy)); err != nil {
			logger.Error("apply tax policy failed", "error", err)
		}
	})
	if opts.ConfigPath != "" {
		config.Watch()
	}

	engine := server.NewLedgerEngine(server.EngineOptions{
		ServiceName:    name,
		Logger:         logger.Named("http").Logger,
		Metrics:        m,
		MetricsPath:    conf.Metrics.Path,
		Tracing:        conf.Tracing.Enabled,
		MaxBodyBytes:   conf.Server.MaxBodyBytes,
		RateLimitRPS:   conf.Server.RateLimitRPS,
		RateLimitBurst: conf.Server.RateLimitBurst,
	})
	server.RegisterRoutes(engine, svc, server.RouteOptions{
		Precision:   conf.Output.Precision,
		AuthSecret:  conf.Server.AuthSecret,
		Metrics:     m,
		MetricsPath: conf.Metrics.Path,
	})

	serverOpts := server.Options{
		ReadTimeout:     conf.Server.ReadTimeout,
		WriteTimeout:    conf.Server.WriteTimeout,
		ShutdownTimeout: conf.Server.ShutdownTimeout,
	}
	servers := []server.Server{server.NewGinServer(engine, conf.Server.Addr, logger.Named("http").Logger, serverOpts)}
	if conf.GRPC.Enabled {
		grpcLogger := logger.Named("grpc").Logger
		servers = append(servers, server.NewGRPCServer(conf.GRPC, grpcLogger, nil, middleware.GRPCInterceptors(grpcLogger), serverOpts))
	}

	appOpts := append([]app.Option{
		app.WithServer(servers...),
		app.WithShutdownTimeout(conf.Server.ShutdownTimeout * 2),
	}, cleanups...)
	return app.New(name, logger.Logger, appOpts...), nil
}
