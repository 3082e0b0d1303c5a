// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package aws

import (
	awssession "github.com/aws/aws-sdk-go/aws/session"
	awscloudformation "github.com/aws/aws-sdk-go/service/cloudformation"
	awsec2 "github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	awsssm "github.com/aws/aws-sdk-go/service/ssm"
)

func CloudFormation(session *awssession.Session) *awscloudformation.CloudFormation {
	return awscloudformation.New(session)
}

func EC2(session *awssession.Session) *awsec2.EC2 {
	return awsec2.New(session)
}

func SSM(session *awssession.Session) *awsssm.SSM {
	return awsssm.New(session)
}

func S3Uploader(session *awssession.Session) *s3manager.Uploader {
	return s3manager.NewUploader(session)
}
