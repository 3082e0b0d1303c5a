// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package remote

import (
	"fmt"
	"log"
	"strings"
	"time"

	awsaws "github.com/aws/aws-sdk-go/aws"
	awsec2 "github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	awsssm "github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/util"
)

const (
	defaultPollInterval = 5 * time.Second
	agentPollLimit      = 60
	instancePollLimit   = 12
	dispatchAttempts    = 5
	// remote script execution time limit, seconds
	executionTimeout = 600
)

// Executor dispatches scripts to an instance over SSM and waits for them
// synchronously.
type Executor struct {
	SSM ssmiface.SSMAPI
	EC2 ec2iface.EC2API

	PollInterval time.Duration
	sleep        func(time.Duration)
	// bounds waitInvocation; zero means the remote execution time limit
	// plus slack
	invocationWait time.Duration
}

// Invocation is one dispatched command, tracked by id until terminal.
type Invocation struct {
	CommandId string
	Status    string
	Stdout    string
	Stderr    string
}

func NewExecutor(ssm ssmiface.SSMAPI, ec2 ec2iface.EC2API) *Executor {
	return &Executor{SSM: ssm, EC2: ec2, PollInterval: defaultPollInterval, sleep: time.Sleep}
}

// CheckInstance confirms the instance exists and is not terminated.
// A terminated instance fails before any upload or dispatch is attempted.
func (e *Executor) CheckInstance(instanceId string) error {
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	for i := 0; i < instancePollLimit; i++ {
		resp, err := e.EC2.DescribeInstances(&awsec2.DescribeInstancesInput{
			InstanceIds: []*string{awsaws.String(instanceId)},
		})
		if err != nil {
			if aws.IsInvalidInstanceId(err) || strings.Contains(err.Error(), "NotFound") {
				return fmt.Errorf("Instance `%s` does not exist", instanceId)
			}
			return fmt.Errorf("Unable to describe instance `%s`: %v", instanceId, err)
		}
		for _, reservation := range resp.Reservations {
			for _, instance := range reservation.Instances {
				name := ""
				if instance.State != nil {
					name = awsaws.StringValue(instance.State.Name)
				}
				switch name {
				case awsec2.InstanceStateNameTerminated, awsec2.InstanceStateNameShuttingDown:
					return fmt.Errorf("Instance `%s` is %s; re-provision the infrastructure first",
						instanceId, name)
				case "":
				default:
					return nil
				}
			}
		}
		e.sleep(e.PollInterval)
	}
	return fmt.Errorf("Instance `%s` not found after %d polls", instanceId, instancePollLimit)
}

// WaitAgentOnline polls the SSM agent heartbeat until Online, bounded by
// agentPollLimit iterations at PollInterval.
func (e *Executor) WaitAgentOnline(instanceId string) error {
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	for i := 0; i < agentPollLimit; i++ {
		resp, err := e.SSM.DescribeInstanceInformation(&awsssm.DescribeInstanceInformationInput{
			Filters: []*awsssm.InstanceInformationStringFilter{{
				Key:    awsaws.String("InstanceIds"),
				Values: []*string{awsaws.String(instanceId)},
			}},
		})
		if err != nil {
			if !aws.IsThrottling(err) {
				return fmt.Errorf("Unable to query SSM agent status of `%s`: %v", instanceId, err)
			}
			util.WarnOnce("Throttled while polling SSM agent status of `%s`", instanceId)
		}
		if err == nil {
			for _, info := range resp.InstanceInformationList {
				if awsaws.StringValue(info.PingStatus) == awsssm.PingStatusOnline {
					if config.Verbose {
						log.Printf("SSM agent on `%s` is online", instanceId)
					}
					return nil
				}
			}
		}
		if config.Debug && i%6 == 5 {
			log.Printf("Still waiting for SSM agent on `%s` (%d of %d polls)", instanceId, i+1, agentPollLimit)
		}
		e.sleep(e.PollInterval)
	}
	return fmt.Errorf("SSM agent did not go online on `%s` after %d polls", instanceId, agentPollLimit)
}

// Run dispatches the script with bounded retries and waits for the
// invocation to leave {Pending, InProgress}. A non-success terminal
// status yields an error carrying the remote stderr capture.
func (e *Executor) Run(instanceId, script, comment string) (*Invocation, error) {
	return e.run(instanceId, script, comment, dispatchAttempts)
}

// RunOnce dispatches without retry; used by the read-only log fetcher.
func (e *Executor) RunOnce(instanceId, script, comment string) (*Invocation, error) {
	return e.run(instanceId, script, comment, 1)
}

func (e *Executor) run(instanceId, script, comment string, attempts int) (*Invocation, error) {
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	var commandId string
	err := util.Retry(fmt.Sprintf("Dispatch to `%s`", instanceId), attempts, e.sleep,
		func(err error) bool { return aws.IsInvalidInstanceId(err) || aws.IsAccessDenied(err) },
		func() error {
			resp, err := e.SSM.SendCommand(&awsssm.SendCommandInput{
				DocumentName: awsaws.String("AWS-RunShellScript"),
				InstanceIds:  []*string{awsaws.String(instanceId)},
				Comment:      awsaws.String(comment),
				Parameters: map[string][]*string{
					"commands":         {awsaws.String(script)},
					"executionTimeout": {awsaws.String(fmt.Sprintf("%d", executionTimeout))},
				},
			})
			if err != nil {
				return err
			}
			commandId = awsaws.StringValue(resp.Command.CommandId)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		log.Printf("Dispatched command `%s` to `%s`", commandId, instanceId)
	}
	return e.waitInvocation(instanceId, commandId)
}

func (e *Executor) waitInvocation(instanceId, commandId string) (*Invocation, error) {
	// bounded by the remote execution time limit plus slack, so a hung
	// agent cannot wedge the run forever
	wait := e.invocationWait
	if wait == 0 {
		wait = executionTimeout*time.Second + 2*time.Minute
	}
	deadline := time.Now().Add(wait)
	for {
		resp, err := e.SSM.GetCommandInvocation(&awsssm.GetCommandInvocationInput{
			CommandId:  awsaws.String(commandId),
			InstanceId: awsaws.String(instanceId),
		})
		if err != nil && errorIsInvocationDoesNotExist(err) {
			// brief window between SendCommand and invocation visibility
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("Command `%s` on `%s` never became visible", commandId, instanceId)
			}
			e.sleep(e.PollInterval)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("Unable to poll command `%s`: %v", commandId, err)
		}
		status := awsaws.StringValue(resp.Status)
		switch status {
		case awsssm.CommandInvocationStatusPending, awsssm.CommandInvocationStatusInProgress,
			awsssm.CommandInvocationStatusDelayed:
		default:
			invocation := &Invocation{
				CommandId: commandId,
				Status:    status,
				Stdout:    awsaws.StringValue(resp.StandardOutputContent),
				Stderr:    awsaws.StringValue(resp.StandardErrorContent),
			}
			if status != awsssm.CommandInvocationStatusSuccess {
				return invocation, fmt.Errorf("Command `%s` on `%s` finished in status %s:\n%s",
					commandId, instanceId, status, util.Coalesce(invocation.Stderr, "(no stderr captured)"))
			}
			return invocation, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("Command `%s` on `%s` did not finish in time", commandId, instanceId)
		}
		e.sleep(e.PollInterval)
	}
}

func errorIsInvocationDoesNotExist(err error) bool {
	return strings.Contains(err.Error(), awsssm.ErrCodeInvocationDoesNotExist)
}
