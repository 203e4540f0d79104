// Package cmd implements the symcalc command line.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/symcalc"
	"github.com/njchilds90/symcalc/internal/config"
	"github.com/njchilds90/symcalc/internal/logging"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	cfgFile  string
	output   string
	logLevel string
	noSteps  bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "symcalc",
		Short: "Exact derivatives, integrals and limits with work steps",
		Long: `symcalc differentiates, integrates and takes limits of symbolic
expressions and prints the result with its derivation.

Expressions are JSON or YAML trees in the form used by the tool server:
  {"type": "pow", "base": {"type": "sym", "name": "x"}, "exp": {"type": "num", "value": 3}}
Pass an expression inline, or "@file.yaml" to read it from a file, or "-"
for standard input.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config file")
	root.PersistentFlags().BoolVar(&opts.noSteps, "no-steps", false, "omit the work steps")

	root.AddCommand(
		newDiffCmd(opts),
		newIntegrateCmd(opts),
		newLimitCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Server.LogLevel = o.logLevel
	}
	return cfg, nil
}

func (o *options) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.Setup(cfg.Server.LogLevel, w)
}

// readExpr decodes an inline, @file or stdin expression. YAML is a superset
// of JSON, so one decoder serves both.
func readExpr(arg string, stdin io.Reader) (map[string]interface{}, error) {
	var data []byte
	switch {
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("reading expression: %w", err)
		}
		data = b
	default:
		data = []byte(arg)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding expression: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("empty expression")
	}
	return m, nil
}

// point reads an approach point or bound: a number such as "0", "1/2" or
// "-Infinity", or an expression tree.
func point(arg string, stdin io.Reader) (map[string]interface{}, error) {
	if n, err := symcalc.ParseNum(arg); err == nil {
		return map[string]interface{}{"type": "num", "value": n.String()}, nil
	}
	return readExpr(arg, stdin)
}

// run executes one tool call and prints the response.
func (o *options) run(cmd *cobra.Command, req symcalc.ToolRequest) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	logger := o.logger(cfg, cmd.ErrOrStderr())
	resp := symcalc.HandleToolCall(req,
		symcalc.WithConfig(cfg.Engine.Symcalc()),
		symcalc.WithLogger(logger),
	)
	if resp.Error != "" {
		return fmt.Errorf("%s: %s", req.Tool, resp.Error)
	}
	if o.noSteps {
		resp.Steps = nil
	}
	// the tree form is for machines; the CLI prints the renderings
	resp.Result = nil
	return o.print(cmd.OutOrStdout(), resp)
}

func (o *options) print(w io.Writer, resp symcalc.ToolResponse) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(resp)
	}
	return fmt.Errorf("unknown output format %q", o.output)
}
