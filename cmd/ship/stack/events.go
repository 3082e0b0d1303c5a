// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package stack

import (
	"fmt"
	"log"

	awsaws "github.com/aws/aws-sdk-go/aws"
	awscloudformation "github.com/aws/aws-sdk-go/service/cloudformation"

	"github.com/stackship/shipctl/cmd/ship/util"
)

// eventPrinter prints stack events exactly once per (resource, status)
// pair, so repeated polls returning identical events stay quiet.
type eventPrinter struct {
	seen map[string]struct{}
}

func newEventPrinter() *eventPrinter {
	return &eventPrinter{seen: make(map[string]struct{})}
}

// DescribeStackEvents returns events in reverse chronological order;
// print oldest first.
func (p *eventPrinter) print(events []*awscloudformation.StackEvent) {
	for i := len(events) - 1; i >= 0; i-- {
		event := events[i]
		resource := awsaws.StringValue(event.LogicalResourceId)
		status := awsaws.StringValue(event.ResourceStatus)
		key := fmt.Sprintf("%s|%s", resource, status)
		if _, printed := p.seen[key]; printed {
			continue
		}
		p.seen[key] = struct{}{}
		reason := awsaws.StringValue(event.ResourceStatusReason)
		if reason != "" {
			reason = fmt.Sprintf(" (%s)", util.Wrap(reason))
		}
		log.Printf("\t%s => %s%s", resource, status, reason)
	}
}
