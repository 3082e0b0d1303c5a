// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"testing"

	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/params"
)

func TestExplicitValuesRegionFromGlobalFlag(t *testing.T) {
	saved := config.AwsRegion
	defer func() { config.AwsRegion = saved }()
	config.AwsRegion = "eu-west-1"

	if got := explicitValues()[params.KeyRegion]; got != "eu-west-1" {
		t.Errorf("explicitValues()[Region] = %q, want eu-west-1", got)
	}
}

func TestResolveRegionFromGlobalFlag(t *testing.T) {
	saved := config.AwsRegion
	savedApp, savedPublish, savedBucket, savedInstance := appName, publishDir, artifactBucket, instanceId
	defer func() {
		config.AwsRegion = saved
		appName, publishDir, artifactBucket, instanceId = savedApp, savedPublish, savedBucket, savedInstance
	}()
	config.AwsRegion = "eu-west-1"
	appName = "App"
	publishDir = "/build/publish"
	artifactBucket = "deploy-bucket"
	instanceId = "i-0123456789abcdef0"

	p, err := params.Resolve(params.TargetEC2, explicitValues(), nil, nil)
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	// --aws_region must beat the built-in region default
	if got := p.Get(params.KeyRegion); got != "eu-west-1" {
		t.Errorf("Region = %q, want eu-west-1", got)
	}
}
