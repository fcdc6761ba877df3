package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/freedkr/orgchart/internal/builder"
	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/filter"
	"github.com/freedkr/orgchart/internal/logging"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/parser"
	"github.com/freedkr/orgchart/internal/projection"
	"github.com/freedkr/orgchart/internal/render"
)

// cli 命令共享的状态
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

type buildOptions struct {
	file        string
	sheet       string
	chartConfig string
	format      string
	filters     []string
	colorBy     string
	maxDepth    int
	hideDetails bool
	sample      bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "orgchart",
		Short:         "从表格生成组织架构图",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "service-config", "", "服务配置文件路径")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(c.columnsCmd(), c.buildCmd())
	return root
}

func (c *cli) init() error {
	cfg, err := config.LoadConfigForService(config.ServiceTypeCLI, c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		// 命令行默认只输出警告
		cfg.Log.Level = "warn"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	c.cfg = cfg
	c.logger = logger.With(zap.String("service", string(config.ServiceTypeCLI)))
	return nil
}

func (c *cli) parserConfig(sheet string) *parser.ParserConfig {
	pcfg := &parser.ParserConfig{
		SheetName:     c.cfg.Parser.SheetName,
		SkipEmptyRows: c.cfg.Parser.SkipEmptyRows,
		MaxRows:       c.cfg.Parser.MaxRows,
	}
	if sheet != "" {
		pcfg.SheetName = sheet
	}
	return pcfg
}

func (c *cli) loadDataset(ctx context.Context, file, sheet string) (*model.Dataset, error) {
	p, err := parser.ForFile(file, c.parserConfig(sheet), c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("读取表格", zap.String("file", file), zap.String("parser", p.GetName()))
	return p.ParseFile(ctx, file)
}

func (c *cli) columnsCmd() *cobra.Command {
	var file, sheet string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "列出表格的列、默认配置和各列候选值",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.loadDataset(cmd.Context(), file, sheet)
			if err != nil {
				return err
			}
			return writeColumns(cmd.OutOrStdout(), ds)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "表格文件 (.xlsx/.csv)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "工作表名，默认第一个")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeColumns(w io.Writer, ds *model.Dataset) error {
	cfg := model.DefaultChartConfig(ds.Columns)
	suggestions := filter.Suggestions(ds.Records, ds.Columns, filter.DefaultSuggestionLimit)

	var b strings.Builder
	if ds.Sheet != "" {
		fmt.Fprintf(&b, "Sheet:   %s\n", ds.Sheet)
	}
	fmt.Fprintf(&b, "Records: %d\n\n", ds.Len())
	fmt.Fprintln(&b, "Columns:")
	for i, col := range ds.Columns {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, col)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Default config:")
	fmt.Fprintf(&b, "  position: %s\n", cfg.PositionColumn)
	fmt.Fprintf(&b, "  manager:  %s\n", cfg.ManagerColumn)
	fmt.Fprintf(&b, "  display:  %s\n", strings.Join(cfg.DisplayColumns, ", "))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Values:")
	for _, col := range ds.Columns {
		values := suggestions[col]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s\n", col, strings.Join(values, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (c *cli) buildCmd() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "构建组织架构图并输出为树或JSON",
		Example: `  orgchart build -f org.xlsx
  orgchart build -f org.csv --config chart.yaml --format json
  orgchart build -f org.csv --filter Dept=equals:Engineering --color-by Type`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "表格文件 (.xlsx/.csv)")
	f.StringVar(&opts.sheet, "sheet", "", "工作表名，默认第一个")
	f.StringVarP(&opts.chartConfig, "config", "c", "", "图表配置文件 (YAML)")
	f.StringVarP(&opts.format, "format", "o", "tree", "输出格式: tree|json")
	f.StringArrayVar(&opts.filters, "filter", nil, "过滤条件 列=条件:值，可重复")
	f.StringVar(&opts.colorBy, "color-by", "", "按该列的取值为节点着色")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "树形输出的最大深度，0表示不限制")
	f.BoolVar(&opts.hideDetails, "hide-details", false, "树形输出只显示职位和表头字段")
	f.BoolVar(&opts.sample, "sample", false, "使用内置示例数据")
	return cmd
}

func (c *cli) runBuild(ctx context.Context, out, errOut io.Writer, opts *buildOptions) error {
	if opts.format != "tree" && opts.format != "json" {
		return fmt.Errorf("不支持的输出格式: %s", opts.format)
	}

	var ds *model.Dataset
	switch {
	case opts.sample:
		ds = &model.Dataset{Columns: builder.SampleColumns, Records: builder.SampleRecords}
	case opts.file != "":
		loaded, err := c.loadDataset(ctx, opts.file, opts.sheet)
		if err != nil {
			return err
		}
		ds = loaded
	default:
		return fmt.Errorf("需要指定 --file 或 --sample")
	}

	cfg, err := c.chartConfig(opts, ds)
	if err != nil {
		return err
	}

	b := chart.NewBuilder(builder.NewHierarchyBuilder(&builder.BuilderConfig{
		StrictMode:  c.cfg.Builder.StrictMode,
		LogWarnings: c.cfg.Builder.LogWarnings,
	}, c.logger), c.logger)

	result, err := b.Build(ctx, ds.Records, cfg)
	if err != nil {
		return err
	}
	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(errOut, "%d warning(s) while resolving hierarchy, use -v for details\n", n)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Document(ds.Columns))
	}
	return render.NewTreeRenderer(out, render.Options{
		HideDetails: opts.hideDetails,
		MaxDepth:    opts.maxDepth,
	}).Write(out, result.View())
}

// chartConfig 读取配置文件或生成默认配置，再叠加命令行参数
func (c *cli) chartConfig(opts *buildOptions, ds *model.Dataset) (*model.ChartConfig, error) {
	cfg := model.DefaultChartConfig(ds.Columns)
	if opts.chartConfig != "" {
		loaded, err := loadChartConfig(opts.chartConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	for _, expr := range opts.filters {
		column, f, err := parseFilter(expr)
		if err != nil {
			return nil, err
		}
		if cfg.Filters == nil {
			cfg.Filters = model.FilterSpec{}
		}
		cfg.Filters[column] = f
	}

	if opts.colorBy != "" {
		cfg.ColorByColumn = opts.colorBy
		cfg.ValueColors = projection.AssignValueColors(ds.Records, opts.colorBy, cfg.ValueColors)
	}

	if opts.chartConfig != "" || len(opts.filters) > 0 || opts.colorBy != "" {
		if err := cfg.ValidateAgainst(ds.Columns); err != nil {
			return nil, fmt.Errorf("图表配置无效: %w", err)
		}
	}
	return cfg, nil
}

func loadChartConfig(path string) (*model.ChartConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeFileNotFound, path, "read", "读取图表配置失败", err)
	}
	cfg := &model.ChartConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, model.NewFileError(model.ErrCodeParseError, path, "parse", "图表配置格式错误", err)
	}
	return cfg, nil
}

// parseFilter 解析 列=条件:值，省略条件时为 contains
func parseFilter(expr string) (string, model.Filter, error) {
	column, rest, ok := strings.Cut(expr, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", model.Filter{}, model.NewValidationError("filter", expr, "format", "过滤条件格式应为 列=条件:值")
	}

	kind, value, hasKind := strings.Cut(rest, ":")
	if !hasKind {
		return column, model.Filter{Kind: model.FilterContains, Value: rest}, nil
	}
	for _, k := range model.FilterKinds {
		if string(k) == kind {
			return column, model.Filter{Kind: k, Value: value}, nil
		}
	}
	// 值本身包含冒号
	return column, model.Filter{Kind: model.FilterContains, Value: rest}, nil
}
