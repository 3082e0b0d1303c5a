// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package util

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipDir archives the contents of dir into a zip file at archive,
// replacing any stale archive of the same name.
func ZipDir(dir, archive string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("Unable to stat `%s`: %v", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("`%s` is not a directory", dir)
	}

	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Unable to remove stale archive `%s`: %v", archive, err)
	}

	out, err := os.Create(archive)
	if err != nil {
		return fmt.Errorf("Unable to create `%s`: %v", archive, err)
	}
	writer := zip.NewWriter(out)
	writer.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate
		entry, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, in)
		in.Close()
		return err
	})
	if err != nil {
		writer.Close()
		out.Close()
		os.Remove(archive)
		return fmt.Errorf("Unable to archive `%s`: %v", dir, err)
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("Unable to finalize archive `%s`: %v", archive, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("Unable to close archive `%s`: %v", archive, err)
	}
	return nil
}
