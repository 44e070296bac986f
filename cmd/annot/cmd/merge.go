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
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().Bool("strict", false, "Abort on the first conflict or unmappable address")
	viper.BindPFlag("merge.strict", mergeCmd.Flags().Lookup("strict"))
	mergeCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
	mergeCmd.MarkZshCompPositionalArgumentFile(2, "*.json")
}

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <dst.json> <src.json>",
	Short: "Import another file's annotations under the conflict rules",
	Long: heredoc.Doc(`
		Import another file's annotations under the conflict rules.

		Identical facts are no-ops, so re-merging unchanged data is always
		safe. A slot already holding a different value is a conflict: skipped
		and counted by default, fatal with --strict. When both files record
		sections, source addresses are rebased into the destination's layout
		first. The destination is written once, at the end, or not at all.`),
	Example: heredoc.Doc(`
		❯ annot merge curated.json fresh-export.json
		❯ annot merge curated.json teammate.json --strict`),
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		dstPath := filepath.Clean(args[0])
		dst, err := annotation.Open(dstPath)
		if err != nil {
			return err
		}
		src, err := annotation.Open(filepath.Clean(args[1]))
		if err != nil {
			return err
		}

		stats, err := transfer.Merge(dst, src, viper.GetBool("merge.strict"))
		if err != nil {
			return err
		}

		if stats.Conflicts > 0 {
			log.Warnf("skipped %d conflicting entr(ies); rerun with --verbose to see them", stats.Conflicts)
		}
		if stats.Unmapped > 0 {
			log.Warnf("skipped %d address(es) with no home in the destination layout", stats.Unmapped)
		}
		log.WithFields(log.Fields{
			"functions": stats.Functions,
			"names":     stats.Names,
			"comments":  stats.Comments,
			"structs":   stats.Structs,
		}).Info("merged")

		return dst.Save(dstPath)
	},
}
