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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/annot/internal/utils"
	"github.com/blacktop/annot/pkg/export"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("arch", "a", "", "Which architecture to use for fat/universal MachO")
	exportCmd.Flags().StringP("output", "o", "", "Output annotation file (default <macho>.json)")
	viper.BindPFlag("export.arch", exportCmd.Flags().Lookup("arch"))
	viper.BindPFlag("export.output", exportCmd.Flags().Lookup("output"))
	exportCmd.MarkZshCompPositionalArgumentFile(1)
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <macho>",
	Short: "Export a MachO's sections, symbols and function starts to an annotation file",
	Example: heredoc.Doc(`
		❯ annot export /usr/bin/codesign
		❯ annot export kernelcache --arch arm64e --output kc.json`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		machoPath := filepath.Clean(args[0])
		output := viper.GetString("export.output")
		if output == "" {
			output = strings.TrimSuffix(machoPath, filepath.Ext(machoPath)) + ".json"
		}

		m, err := export.Open(machoPath, viper.GetString("export.arch"))
		if err != nil {
			return err
		}
		defer m.Close()

		set, err := export.Annotations(m)
		if err != nil {
			return fmt.Errorf("failed to export annotations: %w", err)
		}

		log.WithFields(log.Fields{
			"sections":  len(set.Sections),
			"names":     humanize.Comma(int64(len(set.Names))),
			"functions": humanize.Comma(int64(len(set.Functions))),
		}).Info("exported")
		utils.Indent(log.Info, 2)("writing " + output)

		return set.Save(output)
	},
}
