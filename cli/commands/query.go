package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/engine"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/schema"
)

var queryCmd = &cobra.Command{
	Use:   "query <model>",
	Short: "Search the rows of a model",
	Long: `Search the rows of a model with a JSON filter document.

The filter uses the operator syntax of the query package; key order is kept:

  {"age": {"$gte": 18}, "$or": [{"name": {"$like": "a%"}}, {"name": null}]}

With --explain the compiled SQL is printed and nothing is executed.`,
	Example: `  magicorm query user --where '{"id": {"$lt": 10}}' --limit 5
  magicorm query user --where '{"name": {"$regex": "^al"}}' --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	queryWhere   string
	queryFields  []string
	queryLimit   int
	queryOffset  int
	queryExplain bool
)

func init() {
	queryCmd.Flags().StringVar(&queryWhere, "where", "", "JSON filter document")
	queryCmd.Flags().StringSliceVar(&queryFields, "fields", nil, "Columns to select (default all)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", -1, "Maximum number of rows")
	queryCmd.Flags().IntVar(&queryOffset, "offset", -1, "Rows to skip")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "Print the SQL instead of running it")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	models, err := loadModels(cfg.SchemaPath)
	if err != nil {
		return err
	}
	m, err := findModel(models, args[0])
	if err != nil {
		return err
	}

	q := filter.Query{}
	if queryWhere != "" {
		if q, err = filter.ParseJSON([]byte(queryWhere)); err != nil {
			return fmt.Errorf("invalid --where: %w", err)
		}
	}

	props := m.Columns()
	if len(queryFields) > 0 {
		props = m.Pick(queryFields...)
		if len(props) != len(queryFields) {
			return fmt.Errorf("--fields: unknown column of %s in %v", m.Name(), queryFields)
		}
	}

	if queryExplain {
		d, err := sqlgen.DialectFor(cfg.Driver)
		if err != nil {
			return err
		}
		return explain(cmd.OutOrStdout(), d, m, q, queryLimit, queryOffset)
	}

	e, err := openEngine(cmd.Context(), engine.M2DDLNone, models)
	if err != nil {
		return err
	}
	defer e.Close(cmd.Context())

	sel := e.Search(props).Where(q)
	if queryLimit >= 0 {
		sel = sel.Limit(queryLimit)
	}
	if queryOffset >= 0 {
		sel = sel.Offset(queryOffset)
	}
	rows, err := sel.All(cmd.Context())
	if err != nil {
		return err
	}

	ui.PrintInfo("%d row(s)", len(rows))
	return ui.PrintTable(props.Names(), tableRows(props, rows))
}

func explain(w io.Writer, d sqlgen.Dialect, m *schema.Model, q filter.Query, limit, offset int) error {
	var lp, op *int
	if limit >= 0 {
		lp = &limit
	}
	if offset >= 0 {
		op = &offset
	}
	compiled, err := sqlgen.Select(d, []string{m.Name()}, filter.Resolve(q), lp, op)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, compiled.SQL)
	if len(compiled.Args) > 0 {
		args := make([]string, len(compiled.Args))
		for i, a := range compiled.Args {
			args[i] = fmt.Sprintf("%#v", a)
		}
		fmt.Fprintf(w, "-- args: %s\n", strings.Join(args, ", "))
	}
	return nil
}

func tableRows(props schema.Columns, rows []*schema.Entity) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(props))
		for i, c := range props {
			v, ok := r.Get(c.Name)
			switch {
			case !ok || v == nil:
				line[i] = "null"
			default:
				line[i] = cast.ToString(v)
			}
		}
		out = append(out, line)
	}
	return out
}
