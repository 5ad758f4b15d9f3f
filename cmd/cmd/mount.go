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
	"github.com/sscafiti/atrsfs/internal/fuse"
	"github.com/sscafiti/atrsfs/internal/logger"
	"github.com/sscafiti/atrsfs/internal/sfs"
	"github.com/spf13/cobra"
)

// DefineMountCommand builds the "atrmount" command, a convenience binary
// not named by the distilled CLI surface: it browses an ATR image's SFS
// tree as a read-only FUSE filesystem, grounded on the teacher's
// RecoverFS/bazil.org/fuse projection, generalized from a flat offset map
// to the reader's real directory hierarchy.
func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "atrmount <image.atr> <mountpoint>",
		Short:        "Mount an SFS volume read-only via FUSE",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := atr.Load(args[0])
			if err != nil {
				return fmt.Errorf("atrmount: %w", err)
			}

			log := logger.New(cmd.ErrOrStderr(), logger.WarnLevel)
			reader, err := sfs.Open(img, log)
			if err != nil {
				return fmt.Errorf("atrmount: %w", err)
			}

			return fuse.Mount(args[1], reader)
		},
	}
	return cmd
}
