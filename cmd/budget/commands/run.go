package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyfcoding/budget/config"
	"github.com/wyfcoding/budget/logging"
	"github.com/wyfcoding/budget/protocol"
	"github.com/wyfcoding/budget/service"
	"github.com/wyfcoding/budget/xerrors"
)

// RunOptions run 命令的参数。
type RunOptions struct {
	ConfigPath  string
	InputPath   string
	SkipInvalid bool
}

// NewRunCommand 创建 run 命令：从标准输入或文件读取文本请求流，对一个新账本依次执行。
func NewRunCommand() *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a text request stream against a fresh ledger",
		Long: `Reads a request count followed by that many requests:

  Earn <date_from> <date_to> <amount>
  Spend <date_from> <date_to> <amount>
  PayTax <date_from> <date_to> <percent>
  ComputeIncome <date_from> <date_to>

and prints one line per ComputeIncome. Unknown commands are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLedger(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&opts.InputPath, "input", "i", "", "read requests from this file instead of stdin")
	cmd.Flags().BoolVar(&opts.SkipInvalid, "skip-invalid", false, "log and skip malformed or rejected requests instead of failing")

	return cmd
}

// runLedger 结果写入 stdout，日志写入 stderr。
func runLedger(ctx context.Context, opts RunOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logOpts := conf.Log.LogOptions(conf.Server.Name, "run")
	logOpts.Writer = stderr
	logger := logging.NewFromConfig(logOpts)

	ledgerConf, err := conf.Ledger.BudgetConfig()
	if err != nil {
		return err
	}
	svc, err := service.New(ledgerConf, nil, logger)
	if err != nil {
		return err
	}

	in := stdin
	if opts.InputPath != "" {
		f, err := os.Open(opts.InputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	requests, err := protocol.ReadRequests(in, opts.SkipInvalid, protocol.WithLogger(logger))
	if err != nil {
		return withLine(err)
	}

	processOpts := []protocol.Option{protocol.WithLogger(logger)}
	if opts.SkipInvalid {
		processOpts = append(processOpts, protocol.SkipRejected())
	}
	responses, procErr := protocol.Process(ctx, svc, requests, processOpts...)

	// 失败前已得到的结果照常输出
	if err := protocol.PrintResponses(stdout, responses, conf.Output.Precision); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}
	if procErr != nil {
		return withLine(procErr)
	}

	logger.Debug("requests processed", "requests", len(requests), "responses", len(responses))
	return nil
}

// withLine 为带行号上下文的错误加上 "line N: " 前缀。
func withLine(err error) error {
	if xe, ok := xerrors.FromError(err); ok {
		if line, ok := xe.Context["line"]; ok {
			return fmt.Errorf("line %v: %w", line, err)
		}
	}
	return err
}
