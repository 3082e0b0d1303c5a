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
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/util"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "shipctl",
	Short: "Ship CTL provisions AWS infrastructure and deploys application builds",
	Long: `Ship CTL provisions AWS infrastructure and deploys application builds:
- CloudFormation stack create / update / delete with output capture;
- build artifact upload to S3 and installation on EC2 over SSM;
- ECS service stacks, remote service logs and diagnostics.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Update()
		if config.Debug {
			log.Printf("Ship CTL %s %s\n", util.Version(), runtime.Version())
		}
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		util.PrintAllWarnings()
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&config.ConfigFile, "config", "", "Config file (default is $HOME/.ship-config.{yaml,json})")

	RootCmd.PersistentFlags().StringVar(&config.AwsProfile, "aws_profile", "", "AWS ~/.aws/credentials profile, AWS_PROFILE")
	awsRegion := os.Getenv("AWS_REGION")
	if awsRegion == "" {
		awsRegion = os.Getenv("AWS_DEFAULT_REGION")
	}
	RootCmd.PersistentFlags().StringVar(&config.AwsRegion, "aws_region", awsRegion, "AWS region, AWS_DEFAULT_REGION")
	RootCmd.PersistentFlags().BoolVar(&config.AwsUseIamRoleCredentials, "aws_use_iam_role_credentials", true, "Try EC2 instance credentials")
	RootCmd.PersistentFlags().BoolVar(&config.AwsPreferProfileCredentials, "aws_prefer_profile_credentials", false, "Try AWS CLI config profile credentials first, before OS env")
	RootCmd.PersistentFlags().BoolVar(&config.SkipAssumeRole, "skip-assume-role", false, "Use ambient credentials instead of assuming the deploy role")

	RootCmd.PersistentFlags().StringVar(&config.StateFile, "state", ".ship-state.json", "Path to the persisted deployment state file")
	RootCmd.PersistentFlags().StringVar(&config.ManifestFile, "manifest", "ship.yaml", "Path to the optional deployment manifest")

	RootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", true, "Verbose mode")
	RootCmd.PersistentFlags().BoolVarP(&config.Debug, "debug", "d", false, "Print debug info. Or set SHIP_DEBUG=1")
	RootCmd.PersistentFlags().BoolVar(&config.Trace, "trace", false, "Print detailed trace info. Or set SHIP_TRACE=1")
	RootCmd.PersistentFlags().StringVar(&config.LogDestination, "log-destination", "stderr", "stderr or stdout")
	RootCmd.PersistentFlags().StringVar(&config.TtyMode, "tty", "autodetect", "Terminal mode for colors, etc. true / false. Or set SHIP_TTY")

	RootCmd.PersistentFlags().BoolVar(&config.AggWarnings, "all-warnings", true, "Repeat all warnings before [successful] exit")
	RootCmd.PersistentFlags().BoolVarP(&config.Force, "force", "f", false, "Force operation despite of errors. Or set SHIP_FORCE=1")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := homedir.Dir()
	if err != nil {
		util.Warn("Unable to determine HOME directory: %v", err)
	}
	if config.ConfigFile != "" {
		viper.SetConfigFile(config.ConfigFile)
	} else {
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".ship-config")
		}
	}

	viper.SetEnvPrefix("ship")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err == nil {
		if config.Verbose {
			log.Printf("Using config file %s", viper.ConfigFileUsed())
		}
	}
	if viper.GetBool("force") {
		config.Force = true
	}
	if viper.GetBool("debug") {
		config.Debug = true
	}
	if viper.GetBool("trace") {
		config.Trace = true
	}
	if tty := viper.GetString("tty"); tty != "" {
		config.TtyMode = tty
	}
}
