// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package stack

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	awsaws "github.com/aws/aws-sdk-go/aws"
	awscloudformation "github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/google/uuid"

	"github.com/stackship/shipctl/cmd/ship/aws"
	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/util"
)

// ErrTimeout marks a stack operation that did not settle within the
// wall-clock bound. The final status is deliberately not read - it may
// not be settled.
var ErrTimeout = errors.New("stack operation timed out")

// Deploy runs Query -> Confirm -> Submit -> Poll -> Resolve for one stack.
// A declined confirmation is success with Result.Declined set.
func (d *Deployer) Deploy(req *Request) (*Result, error) {
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if req.Timeout == 0 {
		req.Timeout = AppTimeout
	}

	existing, err := d.describeStack(req.StackName)
	if err != nil {
		return nil, fmt.Errorf("Unable to query stack `%s`: %v", req.StackName, err)
	}

	update := false
	if existing != nil {
		outputs := stackOutputs(existing)
		log.Printf("Stack `%s` already exists in status %s", req.StackName,
			awsaws.StringValue(existing.StackStatus))
		if len(outputs) > 0 {
			util.PrintMap(outputs)
		}
		verb := "Delete and recreate"
		if req.UpdateInPlace {
			verb = "Update"
		}
		if !d.Confirm(fmt.Sprintf("%s stack `%s`?", verb, req.StackName)) {
			log.Printf("Keeping stack `%s` as is", req.StackName)
			return &Result{Declined: true, Outputs: outputs}, nil
		}
		if req.UpdateInPlace {
			update = true
		} else {
			if err := d.deleteAndWait(req); err != nil {
				return nil, err
			}
		}
	}

	if err := d.submit(req, update); err != nil {
		return nil, err
	}

	status, err := d.poll(req.StackName, req.Timeout)
	if err != nil {
		return nil, err
	}
	if status != awscloudformation.StackStatusCreateComplete &&
		status != awscloudformation.StackStatusUpdateComplete {
		d.diagnose(req.StackName)
		return nil, fmt.Errorf("Stack `%s` settled in status %s", req.StackName, status)
	}

	settled, err := d.describeStack(req.StackName)
	if err != nil || settled == nil {
		return nil, fmt.Errorf("Unable to read outputs of stack `%s`: %v", req.StackName, err)
	}
	return &Result{Outputs: stackOutputs(settled)}, nil
}

// Delete removes the stack after confirmation; used by `shipctl undeploy`.
func (d *Deployer) Delete(stackName string, timeout time.Duration) (*Result, error) {
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	existing, err := d.describeStack(stackName)
	if err != nil {
		return nil, fmt.Errorf("Unable to query stack `%s`: %v", stackName, err)
	}
	if existing == nil {
		log.Printf("Stack `%s` does not exist", stackName)
		return &Result{}, nil
	}
	if !d.Confirm(fmt.Sprintf("Delete stack `%s`?", stackName)) {
		return &Result{Declined: true}, nil
	}
	return &Result{}, d.deleteAndWait(&Request{StackName: stackName, Timeout: timeout})
}

func (d *Deployer) describeStack(name string) (*awscloudformation.Stack, error) {
	resp, err := d.Cfn.DescribeStacks(&awscloudformation.DescribeStacksInput{
		StackName: awsaws.String(name),
	})
	if err != nil {
		if aws.IsStackNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Stacks) == 0 {
		return nil, nil
	}
	return resp.Stacks[0], nil
}

func (d *Deployer) submit(req *Request, update bool) error {
	parameters := make([]*awscloudformation.Parameter, 0, len(req.Parameters))
	for _, key := range util.SortedKeys(req.Parameters) {
		parameters = append(parameters, &awscloudformation.Parameter{
			ParameterKey:   awsaws.String(key),
			ParameterValue: awsaws.String(req.Parameters[key]),
		})
	}
	capabilities := []*string{awsaws.String(awscloudformation.CapabilityCapabilityNamedIam)}
	token := awsaws.String(uuid.New().String())

	if update {
		if config.Verbose {
			log.Printf("Updating stack `%s`", req.StackName)
		}
		_, err := d.Cfn.UpdateStack(&awscloudformation.UpdateStackInput{
			StackName:          awsaws.String(req.StackName),
			TemplateBody:       awsaws.String(req.TemplateBody),
			Parameters:         parameters,
			Capabilities:       capabilities,
			ClientRequestToken: token,
		})
		if err != nil {
			if strings.Contains(err.Error(), "No updates are to be performed") {
				log.Printf("Stack `%s` is already up to date", req.StackName)
				return nil
			}
			return fmt.Errorf("Unable to update stack `%s`: %v", req.StackName, err)
		}
		return nil
	}

	if config.Verbose {
		log.Printf("Creating stack `%s`", req.StackName)
	}
	_, err := d.Cfn.CreateStack(&awscloudformation.CreateStackInput{
		StackName:          awsaws.String(req.StackName),
		TemplateBody:       awsaws.String(req.TemplateBody),
		Parameters:         parameters,
		Capabilities:       capabilities,
		ClientRequestToken: token,
		Tags: []*awscloudformation.Tag{{
			Key:   awsaws.String(provenanceTagKey),
			Value: awsaws.String(provenanceTag),
		}},
	})
	if err != nil {
		return fmt.Errorf("Unable to create stack `%s`: %v", req.StackName, err)
	}
	return nil
}

// poll fetches status and events every PollInterval until the status
// matches a terminal pattern or the wall-clock timeout elapses.
func (d *Deployer) poll(name string, timeout time.Duration) (string, error) {
	printer := newEventPrinter()
	deadline := time.Now().Add(timeout)
	for {
		stack, err := d.describeStack(name)
		if err != nil {
			return "", fmt.Errorf("Unable to poll stack `%s`: %v", name, err)
		}
		if stack == nil {
			return "", fmt.Errorf("Stack `%s` vanished while polling", name)
		}

		if events, err := d.recentEvents(name); err == nil {
			printer.print(events)
		} else if config.Debug {
			log.Printf("Unable to fetch events of stack `%s`: %v", name, err)
		}

		status := awsaws.StringValue(stack.StackStatus)
		if terminalStatus(status) {
			return status, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("Stack `%s` did not settle within %v: %w", name, timeout, ErrTimeout)
		}
		d.sleep(d.PollInterval)
	}
}

func (d *Deployer) recentEvents(name string) ([]*awscloudformation.StackEvent, error) {
	resp, err := d.Cfn.DescribeStackEvents(&awscloudformation.DescribeStackEventsInput{
		StackName: awsaws.String(name),
	})
	if err != nil {
		return nil, err
	}
	return resp.StackEvents, nil
}

func (d *Deployer) deleteAndWait(req *Request) error {
	if config.Verbose {
		log.Printf("Deleting stack `%s`", req.StackName)
	}
	_, err := d.Cfn.DeleteStack(&awscloudformation.DeleteStackInput{
		StackName: awsaws.String(req.StackName),
	})
	if err != nil {
		return fmt.Errorf("Unable to delete stack `%s`: %v", req.StackName, err)
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = AppTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		stack, err := d.describeStack(req.StackName)
		if err != nil {
			return fmt.Errorf("Unable to poll stack `%s` deletion: %v", req.StackName, err)
		}
		if stack == nil {
			return nil
		}
		status := awsaws.StringValue(stack.StackStatus)
		switch status {
		case awscloudformation.StackStatusDeleteComplete:
			return nil
		case awscloudformation.StackStatusDeleteFailed:
			d.diagnose(req.StackName)
			return fmt.Errorf("Stack `%s` deletion failed", req.StackName)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("Stack `%s` deletion did not settle within %v: %w",
				req.StackName, timeout, ErrTimeout)
		}
		d.sleep(d.PollInterval)
	}
}

// terminal when the status contains COMPLETE, FAILED, or ROLLBACK, except
// the transient *_IN_PROGRESS rollback states.
func terminalStatus(status string) bool {
	if strings.HasSuffix(status, "_IN_PROGRESS") {
		return false
	}
	return strings.Contains(status, "COMPLETE") ||
		strings.Contains(status, "FAILED") ||
		strings.Contains(status, "ROLLBACK")
}

func stackOutputs(stack *awscloudformation.Stack) map[string]string {
	outputs := make(map[string]string)
	for _, output := range stack.Outputs {
		outputs[awsaws.StringValue(output.OutputKey)] = awsaws.StringValue(output.OutputValue)
	}
	return outputs
}
