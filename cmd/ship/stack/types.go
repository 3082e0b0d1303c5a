// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package stack

import (
	"time"

	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"

	"github.com/stackship/shipctl/cmd/ship/util"
)

const (
	defaultPollInterval = 5 * time.Second
	// infra stacks carry more resources than app stacks
	InfraTimeout = 15 * time.Minute
	AppTimeout   = 10 * time.Minute

	provenanceTagKey = "managed-by"
	provenanceTag    = "shipctl"
)

// Deployer drives one create-or-update stack run.
type Deployer struct {
	Cfn          cloudformationiface.CloudFormationAPI
	Confirm      func(prompt string) bool
	PollInterval time.Duration

	sleep func(time.Duration)
}

// Request is an idempotent unit of work keyed by stack name.
type Request struct {
	StackName     string
	TemplateBody  string
	Parameters    map[string]string
	UpdateInPlace bool
	Timeout       time.Duration
}

// Result carries the outputs of a settled stack, or Declined when the
// operator answered "no" to the confirmation prompt.
type Result struct {
	Outputs  map[string]string
	Declined bool
}

func NewDeployer(cfn cloudformationiface.CloudFormationAPI) *Deployer {
	return &Deployer{
		Cfn:          cfn,
		Confirm:      util.AskConfirmation,
		PollInterval: defaultPollInterval,
		sleep:        time.Sleep,
	}
}
