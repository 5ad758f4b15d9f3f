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
	"time"

	"github.com/sscafiti/atrsfs/internal/atr"
	"github.com/sscafiti/atrsfs/internal/env"
	"github.com/sscafiti/atrsfs/internal/hostfs"
	"github.com/sscafiti/atrsfs/internal/logger"
	"github.com/sscafiti/atrsfs/internal/sfs"
	"github.com/sscafiti/atrsfs/pkg/util/format"
	"github.com/spf13/cobra"
)

// candidateGeometries mirrors the reference tool's built-in disk size
// table (tried smallest-capacity first) for the non-exact-size path.
var candidateGeometries = []sfs.Geometry{
	{SectorSize: 128, SectorCount: 720},
	{SectorSize: 256, SectorCount: 720},
	{SectorSize: 128, SectorCount: 1440},
	{SectorSize: 256, SectorCount: 1040},
	{SectorSize: 256, SectorCount: 2002},
	{SectorSize: 128, SectorCount: 65535},
	{SectorSize: 256, SectorCount: 65535},
}

// DefineMkatrCommand builds the "mkatr" command: build an SFS volume from
// host paths and write it out as an ATR image (§4.4, §4.7).
func DefineMkatrCommand() *cobra.Command {
	var (
		exactSize   bool
		bootPage    uint32
		minBytes    string
		volumeName  string
		showVersion bool
		bootNext    bool
	)

	cmd := &cobra.Command{
		Use:          "mkatr [-b] <out.atr> [+h|+p|+a] file...",
		Short:        "Build an ATR image holding a SpartaDOS File System volume",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "mkatr version %s (%s, %s)\n", env.Version, env.CommitHash, env.BuildTime)
				return nil
			}
			if bootPage != 0 && (bootPage < 3 || bootPage > 0xF0) {
				return fmt.Errorf("mkatr: -B: boot page %d out of range (3-240)", bootPage)
			}

			log := logger.New(cmd.ErrOrStderr(), logger.WarnLevel)

			out := args[0]
			root := &sfs.Node{Name: volumeName, IsDir: true}

			nextAttr := byte(0)
			nextBoot := bootNext
			for _, a := range args[1:] {
				switch a {
				case "+h":
					nextAttr |= sfs.FlagHidden
					continue
				case "+p":
					nextAttr |= sfs.FlagProtected
					continue
				case "+a":
					nextAttr |= sfs.FlagArchived
					continue
				}

				node, err := hostfs.BuildTree(a)
				if err != nil {
					return err
				}
				node.Attr |= nextAttr
				if nextBoot {
					node.Boot = true
					nextBoot = false
				}
				nextAttr = 0
				root.Children = append(root.Children, node)
			}

			minN, err := format.ParseBytes(minBytesOrZero(minBytes))
			if err != nil {
				return fmt.Errorf("mkatr: -s: %w", err)
			}
			if minN > 65535*256 {
				return fmt.Errorf("mkatr: -s: minimum size %d exceeds the largest representable geometry", minN)
			}

			buildTime := time.Now()

			var v *sfs.Volume
			if exactSize {
				v, err = sfs.BuildExactSize(sfs.ExactSizeOptions{
					BootPage:   byte(bootPage),
					VolumeName: volumeName,
					Root:       root,
					BuildTime:  buildTime,
					MinBytes:   int64(minN),
				})
			} else {
				for _, geo := range candidateGeometries {
					if geo.Bytes() < int64(minN) {
						continue
					}
					v, err = sfs.Build(sfs.BuildOptions{
						Geometry:   geo,
						BootPage:   byte(bootPage),
						VolumeName: volumeName,
						Root:       root,
						BuildTime:  buildTime,
						Log:        log,
					})
					if err == nil {
						break
					}
					log.Warnf("geometry %dx%d exhausted: %s", geo.SectorSize, geo.SectorCount, err)
				}
			}
			if err != nil || v == nil {
				return fmt.Errorf("mkatr: can't create an image big enough")
			}

			if err := atr.WriteVolume(out, v); err != nil {
				return fmt.Errorf("mkatr: %w", err)
			}

			ssec, nsec := v.Geometry()
			log.Infof("wrote %s: %d sectors of %d bytes", out, nsec, ssec)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&exactSize, "exact-size", "x", false, "search for the smallest sufficient geometry")
	cmd.Flags().BoolVarP(&bootNext, "boot", "b", false, "mark the first file argument as the boot file")
	cmd.Flags().Uint32VarP(&bootPage, "boot-page", "B", 7, "boot loader entry page (3-240)")
	cmd.Flags().StringVarP(&minBytes, "min-bytes", "s", "", "minimum image size (e.g. 92160, 180KB)")
	cmd.Flags().StringVarP(&volumeName, "volume-name", "n", "", "volume name (8.3, defaults to empty)")
	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	return cmd
}

func minBytesOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
