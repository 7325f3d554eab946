package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/schema"
)

var describeCmd = &cobra.Command{
	Use:   "describe [schema-path]",
	Short: "Render the models of a schema as tables",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDescribe,
}

var describeRaw bool

func init() {
	describeCmd.Flags().BoolVar(&describeRaw, "raw", false, "Print markdown without rendering")

	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	models, err := loadModels(schemaPath(args))
	if err != nil {
		return err
	}
	md := describeMarkdown(models)
	if describeRaw {
		_, err := fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	return ui.PrintMarkdown(md)
}

func describeMarkdown(models []*schema.Model) string {
	var b strings.Builder
	for i, m := range models {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", m.Name())
		b.WriteString("| column | type | attributes | default | comment |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range m.Columns() {
			def := ""
			if c.HasDefault {
				def = fmt.Sprintf("`%v`", c.Default)
				if c.Default == nil {
					def = "`null`"
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				c.Name, c.Spec(), strings.Join(attributes(c), ", "), def, c.Comment)
		}
	}
	return b.String()
}

func attributes(c *schema.Column) []string {
	var attrs []string
	if c.Primary {
		attrs = append(attrs, "primary")
	}
	if c.Autoinc {
		attrs = append(attrs, "autoinc")
	}
	if c.Unique {
		attrs = append(attrs, "unique")
	}
	if c.NotNull {
		attrs = append(attrs, "not null")
	}
	if c.Required {
		attrs = append(attrs, "required")
	}
	return attrs
}
