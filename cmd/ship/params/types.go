// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package params

// Target discriminates the two deployment paths.
type Target string

const (
	TargetEC2 Target = "ec2"
	TargetECS Target = "ecs"
)

// Canonical parameter names. Flags, manifest entries, and persisted state
// all resolve onto these keys.
const (
	KeyApp              = "App"
	KeyRegion           = "Region"
	KeyPublishDirectory = "PublishDirectory"
	KeyArtifactBucket   = "ArtifactBucket"
	KeyRuntimeVersion   = "RuntimeVersion"
	KeyStackName        = "StackName"

	KeyEc2InstanceId   = "Ec2InstanceId"
	KeySubnetId        = "SubnetId"
	KeySecurityGroupId = "SecurityGroupId"
	KeyInstanceProfile = "InstanceProfile"

	KeyImageUri           = "ImageUri"
	KeyCpu                = "Cpu"
	KeyMemory             = "Memory"
	KeyPort               = "Port"
	KeyTaskCount          = "TaskCount"
	KeyHealthCheckPath    = "HealthCheckPath"
	KeyVpcId              = "VpcId"
	KeyPrivateSubnetIds   = "PrivateSubnetIds"
	KeyAlbListenerArn     = "AlbListenerArn"
	KeyEcsClusterName     = "EcsClusterName"
	KeyEcsSecurityGroupId = "EcsSecurityGroupId"
	KeyExecutionRoleArn   = "ExecutionRoleArn"
	KeyTaskRoleArn        = "TaskRoleArn"
)

// Parameters is the fully resolved value set driving one deploy invocation.
type Parameters struct {
	Target Target
	Values map[string]string

	Env map[string]string
}

func (p *Parameters) Get(key string) string {
	return p.Values[key]
}

// StackName defaults to `<app>-<target>` when not supplied.
func (p *Parameters) StackName() string {
	if name := p.Values[KeyStackName]; name != "" {
		return name
	}
	return p.Values[KeyApp] + "-" + string(p.Target)
}

var defaults = map[string]string{
	KeyRegion:          "us-east-1",
	KeyRuntimeVersion:  "6.0",
	KeyCpu:             "256",
	KeyMemory:          "512",
	KeyPort:            "5000",
	KeyTaskCount:       "1",
	KeyHealthCheckPath: "/",
}

var requiredByTarget = map[Target][]string{
	TargetEC2: {
		KeyApp,
		KeyRegion,
		KeyPublishDirectory,
		KeyArtifactBucket,
		KeyEc2InstanceId,
	},
	TargetECS: {
		KeyApp,
		KeyRegion,
		KeyImageUri,
		KeyEcsClusterName,
		KeyEcsSecurityGroupId,
		KeyPrivateSubnetIds,
		KeyAlbListenerArn,
		KeyExecutionRoleArn,
		KeyTaskRoleArn,
	},
}
