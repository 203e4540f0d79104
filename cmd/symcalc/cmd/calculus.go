package cmd

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/symcalc"
)

func newDiffCmd(opts *options) *cobra.Command {
	var (
		varName string
		order   int
		partial bool
	)
	c := &cobra.Command{
		Use:   "diff <expr>",
		Short: "Differentiate an expression",
		Long: `Differentiate an expression with respect to a variable.

Examples:
  symcalc diff --var x '{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":3}}'
  symcalc diff --var x --order 2 @expr.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			tool := "diffn"
			if partial {
				tool = "pdiff"
			}
			return opts.run(cmd, symcalc.ToolRequest{Tool: tool, Params: map[string]interface{}{
				"expr": e, "var": varName, "n": order,
			}})
		},
	}
	c.Flags().StringVar(&varName, "var", "x", "differentiation variable")
	c.Flags().IntVarP(&order, "order", "n", 1, "derivative order")
	c.Flags().BoolVar(&partial, "partial", false, "partial derivative: ignore implicit dependencies")
	return c
}

func newIntegrateCmd(opts *options) *cobra.Command {
	var (
		varName      string
		lower, upper string
		noConstant   bool
	)
	c := &cobra.Command{
		Use:   "integrate <expr>",
		Short: "Integrate an expression, optionally between bounds",
		Long: `Find an antiderivative, or a definite integral when both bounds are given.

Examples:
  symcalc integrate --var x @xex.yaml
  symcalc integrate --var x --lower 0 --upper 1 '{"type":"sym","name":"x"}'
  symcalc integrate --var x --lower 0 --upper Infinity @decay.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			params := map[string]interface{}{"expr": e, "var": varName}
			if lower == "" && upper == "" {
				params["constant"] = !noConstant
				return opts.run(cmd, symcalc.ToolRequest{Tool: "integrate", Params: params})
			}
			if params["lower"], err = point(lower, cmd.InOrStdin()); err != nil {
				return err
			}
			if params["upper"], err = point(upper, cmd.InOrStdin()); err != nil {
				return err
			}
			return opts.run(cmd, symcalc.ToolRequest{Tool: "definite_integrate", Params: params})
		},
	}
	c.Flags().StringVar(&varName, "var", "x", "integration variable")
	c.Flags().StringVar(&lower, "lower", "", "lower bound")
	c.Flags().StringVar(&upper, "upper", "", "upper bound")
	c.Flags().BoolVar(&noConstant, "no-constant", false, "omit the constant of integration")
	c.MarkFlagsRequiredTogether("lower", "upper")
	return c
}

func newLimitCmd(opts *options) *cobra.Command {
	var varName, at string
	c := &cobra.Command{
		Use:   "limit <expr>",
		Short: "Take the limit of an expression",
		Long: `Take the limit as a variable approaches a point. The point may be
a number, Infinity, -Infinity or an expression.

Examples:
  symcalc limit --var x --at 0 @sinc.yaml
  symcalc limit --var x --at Infinity @rational.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			p, err := point(at, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return opts.run(cmd, symcalc.ToolRequest{Tool: "limit", Params: map[string]interface{}{
				"expr": e, "var": varName, "point": p,
			}})
		},
	}
	c.Flags().StringVar(&varName, "var", "x", "approach variable")
	c.Flags().StringVar(&at, "at", "0", "approach point")
	return c
}
