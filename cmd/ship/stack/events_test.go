package stack

import (
	"bytes"
	"log"
	"strings"
	"testing"

	awsaws "github.com/aws/aws-sdk-go/aws"
	awscloudformation "github.com/aws/aws-sdk-go/service/cloudformation"
)

func event(resource, status string) *awscloudformation.StackEvent {
	return &awscloudformation.StackEvent{
		LogicalResourceId: awsaws.String(resource),
		ResourceStatus:    awsaws.String(status),
	}
}

func TestEventPrinterDedupe(t *testing.T) {
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)

	// reverse chronological, as the API returns them
	first := []*awscloudformation.StackEvent{
		event("Instance", awscloudformation.ResourceStatusCreateInProgress),
		event("Bucket", awscloudformation.ResourceStatusCreateInProgress),
	}
	second := []*awscloudformation.StackEvent{
		event("Instance", awscloudformation.ResourceStatusCreateComplete),
		event("Instance", awscloudformation.ResourceStatusCreateInProgress),
		event("Bucket", awscloudformation.ResourceStatusCreateComplete),
		event("Bucket", awscloudformation.ResourceStatusCreateInProgress),
	}

	p := newEventPrinter()
	p.print(first)
	p.print(first) // identical poll prints nothing new
	p.print(second)
	p.print(second)

	out := buf.String()
	for _, want := range []string{
		"Bucket => CREATE_IN_PROGRESS",
		"Bucket => CREATE_COMPLETE",
		"Instance => CREATE_IN_PROGRESS",
		"Instance => CREATE_COMPLETE",
	} {
		if got := strings.Count(out, want); got != 1 {
			t.Errorf("%q printed %d times, want 1:\n%s", want, got, out)
		}
	}
}

func TestEventPrinterOldestFirst(t *testing.T) {
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)

	p := newEventPrinter()
	p.print([]*awscloudformation.StackEvent{
		event("Bucket", awscloudformation.ResourceStatusCreateComplete),
		event("Bucket", awscloudformation.ResourceStatusCreateInProgress),
	})

	out := buf.String()
	inProgress := strings.Index(out, "CREATE_IN_PROGRESS")
	complete := strings.Index(out, "CREATE_COMPLETE")
	if inProgress < 0 || complete < 0 || inProgress > complete {
		t.Errorf("events out of order:\n%s", out)
	}
}
