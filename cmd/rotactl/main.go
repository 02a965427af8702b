// rotactl 是 C6 编排器在 HTTP 之外的命令行入口：读入一份作业 JSON 文件，
// 跑一次排班生成或矩阵演化，把结果打印到标准输出（或写入文件）。
//
// 不引入任何第三方 CLI 框架——跟教师的 cmd/server 一样，一次性命令只用标准库
// flag/encoding/json 就够了，没有子命令树需要管理的复杂度。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotacore/rotacore/pkg/logger"
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/orchestrator"
)

var (
	Version = "dev"
)

func main() {
	var (
		mode    = flag.String("mode", "schedule", "作业类型：schedule 或 matrix")
		input   = flag.String("input", "", "作业请求 JSON 文件路径（必填，- 表示标准输入）")
		output  = flag.String("output", "", "结果 JSON 写入路径（默认标准输出）")
		timeout = flag.Duration("timeout", 0, "整体超时，0 表示使用请求里 Options.GATimeoutMs 或各自默认值")
		logLvl  = flag.String("log-level", "warn", "日志级别")
		version = flag.Bool("version", false, "打印版本号并退出")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rotactl - RotaCore 排班引擎命令行入口\n\n")
		fmt.Fprintf(os.Stderr, "用法:\n  rotactl -mode schedule -input job.json [-output result.json]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("rotactl %s\n", Version)
		return
	}

	logger.Init(logger.Config{Level: *logLvl, Format: "console"})

	if *input == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须通过 -input 指定作业请求文件")
		flag.Usage()
		os.Exit(2)
	}

	raw, err := readInput(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取作业文件失败: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	result, err := run(ctx, *mode, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "作业执行失败: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutput(*output, result); err != nil {
		fmt.Fprintf(os.Stderr, "写入结果失败: %v\n", err)
		os.Exit(1)
	}

	if result.Failed {
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, raw []byte) (*model.JobResult, error) {
	start := time.Now()
	switch mode {
	case "schedule":
		var req model.GenerateScheduleRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("解析排班请求失败: %w", err)
		}
		result, err := orchestrator.GenerateSchedule(ctx, req)
		if err != nil {
			return nil, err
		}
		logger.Info().Dur("elapsed", time.Since(start)).Msg("排班生成完成")
		return result, nil
	case "matrix":
		var req model.GenerateMatrixRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("解析矩阵请求失败: %w", err)
		}
		result, err := orchestrator.GenerateMatrix(ctx, req)
		if err != nil {
			return nil, err
		}
		logger.Info().Dur("elapsed", time.Since(start)).Msg("矩阵演化完成")
		return result, nil
	default:
		return nil, fmt.Errorf("未知的 -mode %q（支持 schedule / matrix）", mode)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, result *model.JobResult) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	encoded = append(encoded, '\n')

	if path == "" {
		_, err := os.Stdout.Write(encoded)
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}
