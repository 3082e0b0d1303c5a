// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package stack

import (
	"log"
	"strings"

	awsaws "github.com/aws/aws-sdk-go/aws"

	"github.com/stackship/shipctl/cmd/ship/util"
)

var suggestions = []struct {
	keywords   []string
	suggestion string
}{
	{[]string{"role", "trust", "AssumeRole"},
		"Check the deploy role exists and its trust policy allows CloudFormation and your caller"},
	{[]string{"subnet", "vpc", "security group"},
		"Check the network identifiers (VPC, subnet, security group) exist in the target region"},
	{[]string{"cluster"},
		"Check the ECS cluster exists; run `shipctl provision --target ecs` first"},
	{[]string{"certificate"},
		"Check the TLS certificate ARN is valid and issued in the stack's region"},
}

// Suggest maps a failed-resource reason to operator guidance, or "".
func Suggest(reason string) string {
	lower := strings.ToLower(reason)
	for _, s := range suggestions {
		for _, keyword := range s.keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return s.suggestion
			}
		}
	}
	return ""
}

// diagnose fetches failed-resource events and prints their reasons with
// best-effort suggestions.
func (d *Deployer) diagnose(stackName string) {
	events, err := d.recentEvents(stackName)
	if err != nil {
		util.Warn("Unable to fetch failure events of stack `%s`: %v", stackName, err)
		return
	}
	for _, event := range events {
		status := awsaws.StringValue(event.ResourceStatus)
		reason := awsaws.StringValue(event.ResourceStatusReason)
		if !strings.Contains(status, "FAILED") || reason == "" {
			continue
		}
		log.Printf("%s %s failed: %s",
			awsaws.StringValue(event.ResourceType),
			awsaws.StringValue(event.LogicalResourceId),
			reason)
		if suggestion := Suggest(reason); suggestion != "" {
			log.Print(util.HighlightColor(suggestion))
		}
	}
}
