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
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringP("output", "o", "", "Write the canonical file here instead of in place")
	viper.BindPFlag("format.output", formatCmd.Flags().Lookup("output"))
	formatCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
}

// formatCmd represents the format command
var formatCmd = &cobra.Command{
	Use:     "format <annot.json>",
	Aliases: []string{"fmt"},
	Short:   "Rewrite an annotation file in canonical form",
	Long: heredoc.Doc(`
		Rewrite an annotation file in canonical form.

		Normalizes address keys to ascending decimal strings, sorts and
		dedupes the function list, orders tables deterministically and moves
		unrecognized keys after the recognized ones, so diffs between two
		annotation files are meaningful.`),
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

		output := viper.GetString("format.output")
		if output == "" {
			output = path
		}
		return set.Save(output)
	},
}
