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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sscafiti/atrsfs/internal/atr"
	"github.com/sscafiti/atrsfs/internal/env"
	"github.com/sscafiti/atrsfs/internal/logger"
	"github.com/sscafiti/atrsfs/internal/sfs"
	"github.com/sscafiti/atrsfs/pkg/pbar"
	utilio "github.com/sscafiti/atrsfs/pkg/util/io"
	"github.com/spf13/cobra"
)

// DefineLsatrCommand builds the "lsatr" command: list or extract an ATR
// image's SFS contents (§4.5).
func DefineLsatrCommand() *cobra.Command {
	var (
		atariList   bool
		lowerCase   bool
		extractDir  string
		extractRoot string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:          "lsatr <image.atr>",
		Short:        "List or extract a SpartaDOS File System image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "lsatr version %s (%s, %s)\n", env.Version, env.CommitHash, env.BuildTime)
				return nil
			}
			if extractDir != "" && extractRoot != "" {
				return fmt.Errorf("lsatr: -x and -X are mutually exclusive")
			}
			if atariList && (extractDir != "" || extractRoot != "") {
				return fmt.Errorf("lsatr: -a and extraction are mutually exclusive")
			}

			img, err := atr.Load(args[0])
			if err != nil {
				return fmt.Errorf("lsatr: %w", err)
			}

			log := logger.New(cmd.ErrOrStderr(), logger.WarnLevel)
			reader, err := sfs.Open(img, log)
			if err != nil {
				return fmt.Errorf("lsatr: %w", err)
			}

			switch {
			case extractDir != "":
				return extractAll(reader, extractDir, lowerCase)
			case extractRoot != "":
				return extractOne(reader, extractRoot, lowerCase)
			case atariList:
				return listAtari(cmd, reader, lowerCase)
			default:
				return listUnix(cmd, reader, lowerCase)
			}
		},
	}

	cmd.Flags().BoolVarP(&atariList, "atari", "a", false, "Atari-style listing under one header; entries are not grouped by directory")
	cmd.Flags().BoolVarP(&lowerCase, "lower", "l", false, "fold extracted/listed names to lower case")
	cmd.Flags().StringVarP(&extractDir, "extract", "x", "", "extract the whole volume into the given directory")
	cmd.Flags().StringVarP(&extractRoot, "extract-path", "X", "", "extract a single path from the volume")
	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	return cmd
}

func listUnix(cmd *cobra.Command, r *sfs.Reader, lowerCase bool) error {
	out := cmd.OutOrStdout()
	return r.Walk(func(path string, e sfs.DirEntry) error {
		name := path
		if lowerCase {
			name = strings.ToLower(name)
		}
		kind := " "
		if e.IsDir() {
			kind = "d"
		}
		fmt.Fprintf(out, "%s %10d %s %s\n", kind, e.Size, e.ModTime().Format("2006-01-02 15:04:05"), name)
		return nil
	})
}

func listAtari(cmd *cobra.Command, r *sfs.Reader, lowerCase bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "DIRECTORY\n\n")
	return r.Walk(func(path string, e sfs.DirEntry) error {
		name := e.NameString()
		if lowerCase {
			name = strings.ToLower(name)
		}
		fmt.Fprintf(out, "%-12s %7d %s\n", name, e.Size, e.ModTime().Format("02-01-06"))
		return nil
	})
}

func extractAll(r *sfs.Reader, destDir string, lowerCase bool) error {
	var totalBytes int64
	if err := r.Walk(func(_ string, e sfs.DirEntry) error {
		if !e.IsDir() {
			totalBytes += int64(e.Size)
		}
		return nil
	}); err != nil {
		return err
	}

	bar := pbar.NewProgressBarState(totalBytes)
	err := r.Walk(func(path string, e sfs.DirEntry) error {
		if err := extractEntry(r, e, destDir, path, lowerCase); err != nil {
			return err
		}
		if !e.IsDir() {
			bar.ProcessedBytes += int64(e.Size)
			bar.FilesFound++
			bar.Render(false)
		}
		return nil
	})
	if totalBytes > 0 {
		bar.Render(true)
		bar.Finish()
	}
	return err
}

func extractOne(r *sfs.Reader, target string, lowerCase bool) error {
	found := false
	err := r.Walk(func(path string, e sfs.DirEntry) error {
		if path != target {
			return nil
		}
		found = true
		return extractEntry(r, e, ".", filepath.Base(path), lowerCase)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("lsatr: path %q not found in volume", target)
	}
	return nil
}

// extractEntry materializes one directory entry under destDir, per §4.5
// step 4: directories are created with 0777 before recursion, files are
// refused if they already exist, and mtime is restored from the 3-byte
// date/time fields.
func extractEntry(r *sfs.Reader, e sfs.DirEntry, destDir, relPath string, lowerCase bool) error {
	if lowerCase {
		relPath = strings.ToLower(relPath)
	}
	dest := filepath.Join(destDir, filepath.FromSlash(relPath))

	if e.IsDir() {
		if err := os.MkdirAll(dest, 0777); err != nil {
			return fmt.Errorf("lsatr: mkdir %q: %w", dest, err)
		}
		return os.Chtimes(dest, e.ModTime(), e.ModTime())
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %q", sfs.ErrExists, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0777); err != nil {
		return fmt.Errorf("lsatr: mkdir %q: %w", filepath.Dir(dest), err)
	}

	data := r.ReadFile(e)
	if err := utilio.CopyFile(dest, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("lsatr: write %q: %w", dest, err)
	}
	return os.Chtimes(dest, e.ModTime(), e.ModTime())
}
