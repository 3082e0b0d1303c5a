// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package aws

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

func errorCode(err error) string {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code()
	}
	return ""
}

func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return true
	}
	return strings.Contains(err.Error(), "AccessDenied")
}

func IsNoSuchBucket(err error) bool {
	return err != nil && errorCode(err) == "NoSuchBucket"
}

func IsInvalidInstanceId(err error) bool {
	if err == nil {
		return false
	}
	code := errorCode(err)
	return code == "InvalidInstanceId" || strings.HasPrefix(code, "InvalidInstanceID")
}

func IsThrottling(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "SlowDown":
		return true
	}
	return strings.Contains(err.Error(), "Please reduce your request rate")
}

// CloudFormation signals a missing stack as a ValidationError.
func IsStackNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errorCode(err) == "ValidationError" &&
		strings.Contains(err.Error(), "does not exist")
}
