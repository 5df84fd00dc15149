/*
 * fileio.go, part of ligpatch
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package fileio has the small file-system helpers shared by the patching
// steps: opening possibly-compressed inputs, backups, and whole-file rewrites.
package fileio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rmera/ligpatch/internal/errors"
)

// Compressed extensions recognized by Open, in probing order.
var CompressedExts = []string{".gz", ".zst"}

// zstd.Decoder has a Close without an error return, so it doesn't
// satisfy io.ReadCloser on its own.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens name for reading. Files ending in .gz or .zst are
// decompressed on the fly; anything else is read as is.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewReader(f)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, errors.Malformed(err, "can't read gzip stream").WithDetail(name)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case ".zst":
		zs, err := zstd.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, errors.Malformed(err, "can't read zstd stream").WithDetail(name)
		}
		return &readCloser{Reader: zs, closers: []io.Closer{zstdCloser{zs}, f}}, nil
	default:
		return &readCloser{Reader: buf, closers: []io.Closer{f}}, nil
	}
}

// ReadLines reads the whole of name (through Open) and returns its lines,
// each still carrying its line terminator. A last line without a newline
// is returned as is.
func ReadLines(name string) ([]string, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return SplitLines(r)
}

// SplitLines reads r to the end and splits it after every '\n'.
func SplitLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0, 64)
	for {
		s, err := br.ReadString('\n')
		if s != "" {
			lines = append(lines, s)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Locate returns the first existing file among name and name plus each of
// CompressedExts.
func Locate(name string) (string, bool) {
	cands := append([]string{name}, withExts(name)...)
	for _, c := range cands {
		if IsFile(c) {
			return c, true
		}
	}
	return "", false
}

func withExts(name string) []string {
	r := make([]string, 0, len(CompressedExts))
	for _, e := range CompressedExts {
		r = append(r, name+e)
	}
	return r
}

// IsFile reports whether name exists and is a regular file.
func IsFile(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}

// IsDir reports whether name exists and is a directory.
func IsDir(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.IsDir()
}
