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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/annot/internal/colors"
	"github.com/blacktop/annot/internal/utils"
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("info.json", infoCmd.Flags().Lookup("json"))
	infoCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <annot.json>",
	Short: "Summarize an annotation file",
	Example: heredoc.Doc(`
		❯ annot info bin.json`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if viper.GetBool("color") {
			force := true
			colors.Init(&force)
		}

		set, err := annotation.Open(filepath.Clean(args[0]))
		if err != nil {
			return err
		}

		if viper.GetBool("info.json") {
			payload := struct {
				Sections     int `json:"sections"`
				Names        int `json:"names"`
				Functions    int `json:"functions"`
				FuncComments int `json:"func_comments"`
				LineComments int `json:"line_comments"`
				Structs      int `json:"structs"`
				Extras       int `json:"extra_keys"`
			}{
				Sections:     len(set.Sections),
				Names:        len(set.Names),
				Functions:    len(set.Functions),
				FuncComments: len(set.FuncComments),
				LineComments: len(set.LineComments),
				Structs:      len(set.Structs),
				Extras:       len(set.Extras()),
			}
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal info: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println(colors.Bold().Sprint("Sections"))
		names := make([]string, 0, len(set.Sections))
		for name := range set.Sections {
			names = append(names, name)
		}
		sort.Strings(names)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range names {
			sec := set.Sections[name]
			fmt.Fprintf(w, "  %s\t%s\t%s\n", name,
				colors.Faint().Sprint(utils.FormatAddr(sec.Start)),
				colors.Faint().Sprint(utils.FormatAddr(sec.End)))
		}
		w.Flush()

		fmt.Println(colors.Bold().Sprint("Annotations"))
		fmt.Printf("  names:         %s\n", humanize.Comma(int64(len(set.Names))))
		fmt.Printf("  functions:     %s\n", humanize.Comma(int64(len(set.Functions))))
		fmt.Printf("  line comments: %s\n", humanize.Comma(int64(len(set.LineComments))))
		fmt.Printf("  func comments: %s\n", humanize.Comma(int64(len(set.FuncComments))))
		fmt.Printf("  structs:       %s\n", humanize.Comma(int64(len(set.Structs))))
		if extras := set.Extras(); len(extras) > 0 {
			fmt.Println(colors.Bold().Sprint("Passthrough keys"))
			for _, extra := range extras {
				fmt.Printf("  %s\n", extra.Key)
			}
		}

		return nil
	},
}
