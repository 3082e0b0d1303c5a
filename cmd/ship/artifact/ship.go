// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	awsaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/util"
)

const uploadAttempts = 5

// Shipper archives a build output directory and uploads it to the
// artifact bucket.
type Shipper struct {
	Uploader s3manageriface.UploaderAPI

	sleep func(time.Duration)
}

// ArchivePath is deterministic: a sibling of the publish directory,
// named after the app.
func ArchivePath(publishDir, app string) string {
	return filepath.Join(filepath.Dir(util.MustAbs(publishDir)), app+".zip")
}

// Key computes the bucket key `<prefix>/<app>.zip`.
func Key(prefix, app string) string {
	if prefix == "" {
		return app + ".zip"
	}
	return prefix + "/" + app + ".zip"
}

// Ship zips publishDir and uploads the archive with bounded retries.
// Missing bucket and access denied abort immediately; the local archive
// is removed after a successful upload.
func (s *Shipper) Ship(publishDir, bucket, prefix, app string) (string, error) {
	archive := ArchivePath(publishDir, app)
	if err := util.ZipDir(publishDir, archive); err != nil {
		return "", err
	}
	if config.Verbose {
		log.Printf("Archived `%s` to `%s`", publishDir, archive)
	}

	key := Key(prefix, app)
	err := util.Retry(fmt.Sprintf("Upload of `%s` to s3://%s/%s", archive, bucket, key),
		uploadAttempts, s.sleep,
		func(err error) bool { return aws.IsNoSuchBucket(err) || aws.IsAccessDenied(err) },
		func() error {
			in, err := os.Open(archive)
			if err != nil {
				return err
			}
			defer in.Close()
			_, err = s.Uploader.Upload(&s3manager.UploadInput{
				Bucket: awsaws.String(bucket),
				Key:    awsaws.String(key),
				Body:   in,
			})
			return err
		})
	if err != nil {
		return "", err
	}

	if err := os.Remove(archive); err != nil {
		util.Warn("Unable to remove uploaded archive `%s`: %v", archive, err)
	}
	if config.Verbose {
		log.Printf("Uploaded s3://%s/%s", bucket, key)
	}
	return key, nil
}
