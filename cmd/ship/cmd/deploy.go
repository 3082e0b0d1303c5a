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
	"path/filepath"
	"strings"

	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/spf13/cobra"

	"github.com/stackship/shipctl/cmd/ship/artifact"
	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/manifest"
	"github.com/stackship/shipctl/cmd/ship/params"
	"github.com/stackship/shipctl/cmd/ship/remote"
	"github.com/stackship/shipctl/cmd/ship/stack"
	"github.com/stackship/shipctl/cmd/ship/state"
	"github.com/stackship/shipctl/cmd/ship/unit"
	"github.com/stackship/shipctl/cmd/ship/util"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the application build to the provisioned target",
	Long: `Deploy the application build to the provisioned target:
- ec2: archive the publish directory, upload to S3, install over SSM as a systemd service;
- ecs: create or replace the application service stack from the task template.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deploy()
	},
}

func resolveParameters() (*params.Parameters, error) {
	m, err := manifest.Parse(config.ManifestFile)
	if err != nil {
		return nil, err
	}
	st, err := state.Read(config.StateFile)
	if err != nil {
		return nil, err
	}
	return params.Resolve(params.Target(target), explicitValues(), m, st)
}

func deploy() error {
	p, err := resolveParameters()
	if err != nil {
		return err
	}
	app := p.Get(params.KeyApp)
	region := p.Get(params.KeyRegion)

	session, err := aws.DeploySession(region, app)
	if err != nil {
		return err
	}

	switch p.Target {
	case params.TargetEC2:
		return deployEC2(session, p)
	case params.TargetECS:
		return deployECS(session, p)
	}
	return fmt.Errorf("Unknown deployment target `%s`", p.Target)
}

func loadEnvOverrides(p *params.Parameters) (map[string]string, error) {
	app := p.Get(params.KeyApp)
	path := envFile
	if path == "" {
		publish := p.Get(params.KeyPublishDirectory)
		if publish == "" {
			return nil, nil
		}
		path = filepath.Join(filepath.Dir(util.MustAbs(publish)), app+".env")
	}
	env, err := unit.ParseEnvFile(path)
	if err != nil {
		return nil, err
	}
	if env != nil && config.Verbose {
		log.Printf("Loaded %d environment %s from `%s`",
			len(env), util.Plural(len(env), "override"), path)
	}
	return env, nil
}

func deployEC2(session *awssession.Session, p *params.Parameters) error {
	app := p.Get(params.KeyApp)
	instance := p.Get(params.KeyEc2InstanceId)
	if !remote.ValidInstanceId(instance) {
		return fmt.Errorf("`%s` does not look like an EC2 instance id", instance)
	}

	env, err := loadEnvOverrides(p)
	if err != nil {
		return err
	}
	deployDir := "/opt/" + app
	unitSpec := unit.Unit{
		App:              app,
		WorkingDirectory: deployDir,
		ExecStart:        deployDir + "/" + app,
	}
	if len(env) > 0 {
		unitSpec.EnvironmentFile = deployDir + "/" + app + ".env"
	}
	unitText, err := unit.Render(unitSpec)
	if err != nil {
		return err
	}

	executor := remote.NewExecutor(aws.SSM(session), aws.EC2(session))
	// a terminated instance must fail before any upload is attempted
	if err := executor.CheckInstance(instance); err != nil {
		return err
	}

	shipper := &artifact.Shipper{Uploader: aws.S3Uploader(session)}
	bucket := p.Get(params.KeyArtifactBucket)
	key, err := shipper.Ship(p.Get(params.KeyPublishDirectory), bucket, "artifacts", app)
	if err != nil {
		return err
	}

	if err := executor.WaitAgentOnline(instance); err != nil {
		return err
	}

	script, err := remote.DeployScript{
		App:            app,
		RuntimeVersion: p.Get(params.KeyRuntimeVersion),
		Bucket:         bucket,
		Key:            key,
		Region:         p.Get(params.KeyRegion),
		UnitText:       unitText,
		EnvText:        unit.RenderEnvFile(env),
	}.Render()
	if err != nil {
		return err
	}

	invocation, err := executor.Run(instance, script, fmt.Sprintf("shipctl deploy %s", app))
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, invocation.Stdout)
	log.Printf("Deployed `%s` to `%s`", app, instance)
	return nil
}

func deployECS(session *awssession.Session, p *params.Parameters) error {
	if templateFile == "" {
		return fmt.Errorf("--template is required for the ecs target")
	}
	template, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("Unable to read template `%s`: %v", templateFile, err)
	}

	env, err := loadEnvOverrides(p)
	if err != nil {
		return err
	}
	envPairs := make([]string, 0, len(env))
	for _, k := range util.SortedKeys(env) {
		envPairs = append(envPairs, k+"="+env[k])
	}

	app := p.Get(params.KeyApp)
	deployer := stack.NewDeployer(aws.CloudFormation(session))
	result, err := deployer.Deploy(&stack.Request{
		StackName:    p.StackName(),
		TemplateBody: string(template),
		Parameters: map[string]string{
			"AppName":            app,
			"ImageUri":           p.Get(params.KeyImageUri),
			"Cpu":                p.Get(params.KeyCpu),
			"Memory":             p.Get(params.KeyMemory),
			"ContainerPort":      p.Get(params.KeyPort),
			"DesiredCount":       p.Get(params.KeyTaskCount),
			"HealthCheckPath":    p.Get(params.KeyHealthCheckPath),
			"EcsClusterName":     p.Get(params.KeyEcsClusterName),
			"EcsSecurityGroupId": p.Get(params.KeyEcsSecurityGroupId),
			"PrivateSubnetIds":   p.Get(params.KeyPrivateSubnetIds),
			"AlbListenerArn":     p.Get(params.KeyAlbListenerArn),
			"ExecutionRoleArn":   p.Get(params.KeyExecutionRoleArn),
			"TaskRoleArn":        p.Get(params.KeyTaskRoleArn),
			"EnvironmentVars":    strings.Join(envPairs, ","),
		},
		Timeout: stack.AppTimeout,
	})
	if err != nil {
		return err
	}
	if result.Declined {
		return nil
	}
	if len(result.Outputs) > 0 {
		log.Printf("Service stack `%s` outputs:", p.StackName())
		util.PrintMap(result.Outputs)
	}
	log.Printf("Deployed `%s` to cluster `%s`", app, p.Get(params.KeyEcsClusterName))
	return nil
}

func init() {
	deployCmd.Flags().StringVar(&target, "target", "", "Deployment target: ec2 or ecs (required)")
	deployCmd.Flags().StringVar(&appName, "app", "", "Application (binary) name")
	deployCmd.Flags().StringVar(&publishDir, "publish-dir", "", "Path to the build output directory (ec2)")
	deployCmd.Flags().StringVar(&artifactBucket, "artifact-bucket", "", "S3 bucket for build artifacts (ec2)")
	deployCmd.Flags().StringVar(&runtimeVersion, "runtime-version", "", "ASP.NET Core runtime version to install (default 6.0)")
	deployCmd.Flags().StringVar(&stackName, "stack-name", "", "Service stack name (default <app>-<target>)")
	deployCmd.Flags().StringVar(&instanceId, "instance-id", "", "Target EC2 instance id (default from state)")
	deployCmd.Flags().StringVar(&imageUri, "image-uri", "", "Container image URI (ecs)")
	deployCmd.Flags().StringVar(&cpu, "cpu", "", "Task CPU units (ecs, default 256)")
	deployCmd.Flags().StringVar(&memory, "memory", "", "Task memory MiB (ecs, default 512)")
	deployCmd.Flags().StringVar(&port, "port", "", "Container port (ecs, default 5000)")
	deployCmd.Flags().StringVar(&taskCount, "task-count", "", "Desired task count (ecs, default 1)")
	deployCmd.Flags().StringVar(&healthCheckPath, "health-check-path", "", "ALB health check path (ecs, default /)")
	deployCmd.Flags().StringVar(&envFile, "env-file", "", "Environment override file (default <app>.env beside the publish dir)")
	deployCmd.Flags().StringVar(&templateFile, "template", "", "Service stack template file (ecs)")
	deployCmd.MarkFlagRequired("target")
	RootCmd.AddCommand(deployCmd)
}
