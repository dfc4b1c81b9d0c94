package cli

import (
	"fmt"

	"github.com/saeedalam/sketchpp/internal/preproc"
	"github.com/saeedalam/sketchpp/internal/prototype"
	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var prototypesJSON bool

var prototypesCmd = &cobra.Command{
	Use:   "prototypes [sketch]",
	Short: "List the prototypes a sketch needs",
	Long: `List the prototypes preprocess would insert for a sketch, one per line.

With --json each prototype is broken down into its name, return type and
parameters.

Example:
  sketchpp prototypes Blink/
  sketchpp prototypes --json Blink/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrototypes,
}

func init() {
	prototypesCmd.Flags().BoolVar(&prototypesJSON, "json", false, "Output signatures as JSON")
}

func runPrototypes(cmd *cobra.Command, args []string) error {
	sk, err := loadSketchArg(args)
	if err != nil {
		return err
	}

	proj, err := openSketchProject(sk.Dir)
	if err != nil {
		return err
	}
	defer proj.Close()

	res, err := preproc.Prepare(sk.Source(), resolveOptions(cmd, proj))
	if err != nil {
		return locateCommentError(sk, err)
	}

	out := cmd.OutOrStdout()
	if !prototypesJSON {
		for _, p := range res.Prototypes {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	sigs := make([]types.FunctionSig, 0, len(res.Prototypes))
	for _, p := range res.Prototypes {
		sigs = append(sigs, prototype.Describe(p))
	}
	return printJSON(out, sigs)
}
