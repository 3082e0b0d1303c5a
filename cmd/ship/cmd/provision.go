// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/params"
	"github.com/stackship/shipctl/cmd/ship/stack"
	"github.com/stackship/shipctl/cmd/ship/state"
	"github.com/stackship/shipctl/cmd/ship/util"
)

var stackParameters string

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create or update the infrastructure stack",
	Long: `Create or update the infrastructure stack from a CloudFormation template.
Stack outputs (instance id, network ids, cluster name) are persisted to the
local state file and picked up by subsequent deploys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return provision()
	},
}

func provision() error {
	if !util.Contains([]string{string(params.TargetEC2), string(params.TargetECS)}, target) {
		return fmt.Errorf("--target must be one of: ec2, ecs")
	}
	if appName == "" {
		return fmt.Errorf("--app is required")
	}
	template, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("Unable to read template `%s`: %v", templateFile, err)
	}
	extra, err := infraParameters(stackParameters)
	if err != nil {
		return err
	}

	region := util.Coalesce(config.AwsRegion, "us-east-1")
	session, err := aws.DeploySession(region, appName)
	if err != nil {
		return err
	}

	name := stackName
	if name == "" {
		name = fmt.Sprintf("%s-%s-infra", appName, target)
	}
	deployer := stack.NewDeployer(aws.CloudFormation(session))
	result, err := deployer.Deploy(&stack.Request{
		StackName:     name,
		TemplateBody:  string(template),
		Parameters:    extra,
		UpdateInPlace: true,
		Timeout:       stack.InfraTimeout,
	})
	if err != nil {
		return err
	}
	if result.Declined {
		return nil
	}

	st := &state.DeployState{
		Kind:       target,
		StackName:  name,
		InstanceId: util.Coalesce(result.Outputs[params.KeyEc2InstanceId], result.Outputs["InstanceId"]),
		Outputs:    result.Outputs,
	}
	if err := state.Write(config.StateFile, st); err != nil {
		return err
	}
	log.Printf("Provisioned stack `%s`:", name)
	util.PrintMap(result.Outputs)
	return nil
}

// infraParameters merges the free-form --parameters list with the named
// network/instance flags; named flags win.
func infraParameters(list string) (map[string]string, error) {
	extra, err := util.ParseKvList(list)
	if err != nil {
		return nil, fmt.Errorf("Unable to parse --parameters: %v", err)
	}
	named := map[string]string{
		params.KeySubnetId:        subnetId,
		params.KeySecurityGroupId: securityGroupId,
		params.KeyInstanceProfile: instanceProfile,
	}
	for key, value := range named {
		if value != "" {
			extra[key] = value
		}
	}
	return extra, nil
}

func init() {
	provisionCmd.Flags().StringVar(&target, "target", "", "Deployment target: ec2 or ecs (required)")
	provisionCmd.Flags().StringVar(&appName, "app", "", "Application name, used for the deploy role and stack name (required)")
	provisionCmd.Flags().StringVar(&templateFile, "template", "", "Infrastructure stack template file (required)")
	provisionCmd.Flags().StringVar(&stackName, "stack-name", "", "Stack name (default <app>-<target>-infra)")
	provisionCmd.Flags().StringVar(&stackParameters, "parameters", "", "Extra template parameters: --parameters 'KeyName=ops,AmiId=ami-...'")
	provisionCmd.Flags().StringVar(&subnetId, "subnet-id", "", "Subnet for the EC2 instance (ec2)")
	provisionCmd.Flags().StringVar(&securityGroupId, "security-group-id", "", "Security group for the EC2 instance (ec2)")
	provisionCmd.Flags().StringVar(&instanceProfile, "instance-profile", "", "IAM instance profile name (ec2)")
	provisionCmd.MarkFlagRequired("target")
	provisionCmd.MarkFlagRequired("template")
	RootCmd.AddCommand(provisionCmd)
}
