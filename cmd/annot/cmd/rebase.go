/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/annot/internal/commands/transfer"
	"github.com/blacktop/annot/internal/magic"
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/blacktop/annot/pkg/export"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(rebaseCmd)

	rebaseCmd.Flags().StringP("target", "t", "", "Target layout: an annotation file OR a MachO image")
	rebaseCmd.Flags().StringP("arch", "a", "", "Which architecture to use for fat/universal MachO targets")
	rebaseCmd.Flags().StringP("output", "o", "", "Write the rebased annotations here instead of in place")
	rebaseCmd.Flags().Bool("strict", false, "Abort on the first unmappable address")
	rebaseCmd.MarkFlagRequired("target")
	viper.BindPFlag("rebase.target", rebaseCmd.Flags().Lookup("target"))
	viper.BindPFlag("rebase.arch", rebaseCmd.Flags().Lookup("arch"))
	viper.BindPFlag("rebase.output", rebaseCmd.Flags().Lookup("output"))
	viper.BindPFlag("rebase.strict", rebaseCmd.Flags().Lookup("strict"))
	rebaseCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
}

// rebaseCmd represents the rebase command
var rebaseCmd = &cobra.Command{
	Use:   "rebase <annot.json>",
	Short: "Rewrite all addresses into another load's section layout",
	Long: heredoc.Doc(`
		Rewrite all addresses into another load's section layout.

		Every annotation address is resolved to an offset inside its covering
		source section (as recorded in the file's own sections table), then
		re-anchored at the same-named section of the target layout. Addresses
		with no home in the target are skipped and counted unless --strict.`),
	Example: heredoc.Doc(`
		# rebase onto the layout recorded in another annotation file
		❯ annot rebase bin.json --target other.json -o rebased.json
		# rebase onto a MachO's live layout, in place
		❯ annot rebase bin.json --target /path/to/binary`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		path := filepath.Clean(args[0])
		set, err := annotation.Open(path)
		if err != nil {
			return err
		}

		target, cleanup, err := openTarget(viper.GetString("rebase.target"), viper.GetString("rebase.arch"))
		if err != nil {
			return err
		}
		defer cleanup()

		out, stats, err := transfer.RebaseSet(set, target, viper.GetBool("rebase.strict"))
		if err != nil {
			return err
		}

		if stats.Unmapped > 0 {
			log.Warnf("skipped %d address(es) with no home in the target layout", stats.Unmapped)
		}
		log.WithFields(log.Fields{
			"functions": stats.Functions,
			"names":     stats.Names,
			"comments":  stats.Comments,
		}).Info("rebased")

		output := viper.GetString("rebase.output")
		if output == "" {
			output = path
		}
		return out.Save(output)
	},
}

// openTarget resolves --target to a section layout: a MachO image by magic,
// an annotation file otherwise.
func openTarget(path, arch string) (transfer.Target, func() error, error) {
	path = filepath.Clean(path)
	machO, err := magic.IsMachO(path)
	if err != nil {
		return nil, nil, err
	}
	if machO {
		m, err := export.Open(path, arch)
		if err != nil {
			return nil, nil, err
		}
		return export.Layout(m), m.Close, nil
	}
	set, err := annotation.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "target %s is neither a MachO nor an annotation file", path)
	}
	return transfer.SetLayout(set), func() error { return nil }, nil
}
