package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/hotbar/internal/compiler"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Output string
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the mode table format",
		Long: `Print the JSON Schema describing a mode table document.

Point an editor's TOML or JSON language server at it to get completion and
checking while writing a table.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := compiler.Schema()
			if err != nil {
				return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeGeneric, err.Error())
			}
			return writeOutput(cmd.OutOrStdout(), opts.Output, append(data, '\n'))
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}
