// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/params"
)

var (
	target string

	appName         string
	publishDir      string
	artifactBucket  string
	runtimeVersion  string
	stackName       string
	instanceId      string
	subnetId        string
	securityGroupId string
	instanceProfile string

	imageUri        string
	cpu             string
	memory          string
	port            string
	taskCount       string
	healthCheckPath string

	envFile      string
	templateFile string
	logPath      string
)

// explicitValues maps command-line flags onto canonical parameter names;
// empty flags do not override lower layers. Region rides the global
// --aws_region flag (or AWS_REGION / AWS_DEFAULT_REGION).
func explicitValues() map[string]string {
	return map[string]string{
		params.KeyApp:              appName,
		params.KeyRegion:           config.AwsRegion,
		params.KeyPublishDirectory: publishDir,
		params.KeyArtifactBucket:   artifactBucket,
		params.KeyRuntimeVersion:   runtimeVersion,
		params.KeyStackName:        stackName,
		params.KeyEc2InstanceId:    instanceId,
		params.KeyImageUri:         imageUri,
		params.KeyCpu:              cpu,
		params.KeyMemory:           memory,
		params.KeyPort:             port,
		params.KeyTaskCount:        taskCount,
		params.KeyHealthCheckPath:  healthCheckPath,
	}
}
