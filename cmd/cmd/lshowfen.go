// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"fmt"

	"github.com/sscafiti/atrsfs/internal/atr"
	"github.com/sscafiti/atrsfs/internal/env"
	"github.com/sscafiti/atrsfs/internal/sfs"
	"github.com/spf13/cobra"
)

// DefineLshowfenCommand builds the "lshowfen" command: list (never
// extract) a HOWFEN DOS menu disk's contents (§4.6).
func DefineLshowfenCommand() *cobra.Command {
	var (
		atariList   bool
		lowerCase   bool
		extract     bool
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:          "lshowfen <image.atr>",
		Short:        "List a HOWFEN DOS menu disk",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "lshowfen version %s (%s, %s)\n", env.Version, env.CommitHash, env.BuildTime)
				return nil
			}

			img, err := atr.Load(args[0])
			if err != nil {
				return fmt.Errorf("lshowfen: %w", err)
			}

			vol, err := sfs.OpenHowfen(img, lowerCase)
			if err != nil {
				return fmt.Errorf("lshowfen: %w", err)
			}

			if extract {
				return sfs.ErrExtractUnsup
			}

			out := cmd.OutOrStdout()
			if atariList {
				fmt.Fprintf(out, "ATR image: %s\n", args[0])
				fmt.Fprintf(out, "Image size: %d sectors of %d bytes\n", len(img.Data)/img.SectorSize, img.SectorSize)
				fmt.Fprintf(out, "Volume: HOWFEN DOS %s\n", vol.Version)
				for _, e := range vol.Entries {
					fmt.Fprintln(out, e.AtariListingLine())
				}
				return nil
			}

			fmt.Fprintf(out, "%s: %d sectors of %d bytes, HOWFEN DOS %s.\n", args[0], len(img.Data)/img.SectorSize, img.SectorSize, vol.Version)
			for _, e := range vol.Entries {
				fmt.Fprintln(out, e.ListingLine())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&atariList, "atari", "a", false, "Atari-style listing with header")
	cmd.Flags().BoolVarP(&lowerCase, "lower", "l", false, "fold listed names to lower case")
	cmd.Flags().BoolVarP(&extract, "extract", "x", false, "unsupported; always reports an error")
	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	return cmd
}
