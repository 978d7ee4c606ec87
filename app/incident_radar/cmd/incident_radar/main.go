package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/engine"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/logger"
	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/storage"
)

var (
	flagconf string
	input    string
	scope    string
	student  string
	out      string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
	flag.StringVar(&input, "input", "", "incident file (yaml or json); empty reads incidents from the database")
	flag.StringVar(&scope, "scope", string(dm.ScopeInstitution), "report scope: student | institution")
	flag.StringVar(&student, "student", "", "student id, required for -scope student")
	flag.StringVar(&out, "out", "report.json", "output json file, \"-\" writes to stdout")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动事件雷达...")

	ctx := context.Background()

	opts := engine.RunOptions{
		Scope:     dm.Scope(scope),
		StudentID: student,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Infof("[%3d%%] %s", progress, status)
		},
	}

	if input != "" {
		incidents, err := loadIncidents(input)
		if err != nil {
			logger.Log.Fatalf("读取事件文件失败: %v", err)
		}
		opts.Incidents = incidents
		logger.Log.Infof("已从 %s 读取 %d 条事件", input, len(incidents))
	}

	// 3. 初始化数据库连接
	// 如果配置了数据库信息，则尝试连接
	var store engine.Store
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 报告将不会被保存。", err)
		} else {
			defer s.Close()
			store = s
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}
	if store == nil && opts.Incidents == nil {
		logger.Log.Fatal("配置错误: 未指定 -input 且数据库不可用，没有事件来源")
	}

	// 4. 初始化引擎
	eng, err := engine.NewEngine(ctx, cfg, store)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 5. 生成报告
	report, err := eng.Run(ctx, opts)
	if err != nil {
		if report == nil {
			logger.Log.Fatalf("生成报告失败: %v", err)
		}
		logger.Log.Errorf("生成报告失败，输出降级报告: %v", err)
	}

	if err := writeReport(out, report); err != nil {
		logger.Log.Fatalf("写入报告失败: %v", err)
	}
	logger.Log.Infof("✅ 报告生成完毕 [%s]", report.ID)
}

// loadIncidents 按扩展名解析事件文件，内容为事件数组
func loadIncidents(path string) ([]dm.Incident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	incidents := []dm.Incident{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &incidents)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &incidents)
	default:
		return nil, fmt.Errorf("unsupported incident file %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return incidents, nil
}

func writeReport(path string, report *dm.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
