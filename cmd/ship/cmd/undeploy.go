// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/stack"
	"github.com/stackship/shipctl/cmd/ship/state"
	"github.com/stackship/shipctl/cmd/ship/util"
)

var undeployCmd = &cobra.Command{
	Use:   "undeploy",
	Short: "Delete the provisioned stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		return undeploy()
	},
}

func undeploy() error {
	name := stackName
	if name == "" {
		st, err := state.Read(config.StateFile)
		if err != nil {
			return err
		}
		if st != nil {
			name = st.StackName
		}
	}
	if name == "" {
		return fmt.Errorf("No stack name supplied and none found in `%s`", config.StateFile)
	}
	if appName == "" {
		appName = name
	}

	region := util.Coalesce(config.AwsRegion, "us-east-1")
	session, err := aws.DeploySession(region, appName)
	if err != nil {
		return err
	}
	deployer := stack.NewDeployer(aws.CloudFormation(session))
	result, err := deployer.Delete(name, stack.InfraTimeout)
	if err != nil {
		return err
	}
	if !result.Declined {
		log.Printf("Deleted stack `%s`", name)
	}
	return nil
}

func init() {
	undeployCmd.Flags().StringVar(&stackName, "stack-name", "", "Stack name (default from state)")
	undeployCmd.Flags().StringVar(&appName, "app", "", "Application name, used for the deploy role")
	RootCmd.AddCommand(undeployCmd)
}
