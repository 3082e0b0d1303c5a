// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/remote"
	"github.com/stackship/shipctl/cmd/ship/state"
	"github.com/stackship/shipctl/cmd/ship/util"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Fetch service status and logs from the deployed instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logs()
	},
}

func logs() error {
	if appName == "" {
		return fmt.Errorf("--app is required")
	}
	instance := instanceId
	if instance == "" {
		st, err := state.Read(config.StateFile)
		if err != nil {
			return err
		}
		if st != nil {
			instance = st.InstanceId
		}
	}
	if instance == "" {
		return fmt.Errorf("No instance id supplied and none found in `%s`", config.StateFile)
	}
	if !remote.ValidInstanceId(instance) {
		return fmt.Errorf("`%s` does not look like an EC2 instance id", instance)
	}

	region := util.Coalesce(config.AwsRegion, "us-east-1")
	session, err := aws.DeploySession(region, appName)
	if err != nil {
		return err
	}
	executor := remote.NewExecutor(aws.SSM(session), aws.EC2(session))
	return executor.FetchLogs(instance, appName, logPath)
}

func init() {
	logsCmd.Flags().StringVar(&appName, "app", "", "Application name (required)")
	logsCmd.Flags().StringVar(&instanceId, "instance-id", "", "Target EC2 instance id (default from state)")
	logsCmd.Flags().StringVar(&logPath, "log-path", "", "Print this remote file instead of the standard diagnostics")
	RootCmd.AddCommand(logsCmd)
}
