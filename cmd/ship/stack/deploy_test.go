package stack

import (
	"errors"
	"strings"
	"testing"
	"time"

	awsaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	awscloudformation "github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
)

type mockCfn struct {
	cloudformationiface.CloudFormationAPI

	// status per DescribeStacks call; "" means stack does not exist;
	// the last entry repeats
	statuses []string
	outputs  []*awscloudformation.Output
	events   []*awscloudformation.StackEvent

	describeCalls int
	created       *awscloudformation.CreateStackInput
	updated       *awscloudformation.UpdateStackInput
	deleted       *awscloudformation.DeleteStackInput
	updateErr     error
}

func (m *mockCfn) DescribeStacks(input *awscloudformation.DescribeStacksInput) (*awscloudformation.DescribeStacksOutput, error) {
	i := m.describeCalls
	m.describeCalls++
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	status := m.statuses[i]
	if status == "" {
		return nil, awserr.New("ValidationError",
			"Stack with id "+awsaws.StringValue(input.StackName)+" does not exist", nil)
	}
	return &awscloudformation.DescribeStacksOutput{
		Stacks: []*awscloudformation.Stack{{
			StackName:   input.StackName,
			StackStatus: awsaws.String(status),
			Outputs:     m.outputs,
		}},
	}, nil
}

func (m *mockCfn) CreateStack(input *awscloudformation.CreateStackInput) (*awscloudformation.CreateStackOutput, error) {
	m.created = input
	return &awscloudformation.CreateStackOutput{StackId: awsaws.String("id")}, nil
}

func (m *mockCfn) UpdateStack(input *awscloudformation.UpdateStackInput) (*awscloudformation.UpdateStackOutput, error) {
	m.updated = input
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &awscloudformation.UpdateStackOutput{StackId: awsaws.String("id")}, nil
}

func (m *mockCfn) DeleteStack(input *awscloudformation.DeleteStackInput) (*awscloudformation.DeleteStackOutput, error) {
	m.deleted = input
	return &awscloudformation.DeleteStackOutput{}, nil
}

func (m *mockCfn) DescribeStackEvents(*awscloudformation.DescribeStackEventsInput) (*awscloudformation.DescribeStackEventsOutput, error) {
	return &awscloudformation.DescribeStackEventsOutput{StackEvents: m.events}, nil
}

func testDeployer(cfn *mockCfn, confirm bool) *Deployer {
	return &Deployer{
		Cfn:          cfn,
		Confirm:      func(string) bool { return confirm },
		PollInterval: time.Millisecond,
		sleep:        func(time.Duration) {},
	}
}

func TestDeployCreate(t *testing.T) {
	cfn := &mockCfn{
		// absent, then two in-progress polls, then complete
		statuses: []string{
			"",
			awscloudformation.StackStatusCreateInProgress,
			awscloudformation.StackStatusCreateInProgress,
			awscloudformation.StackStatusCreateComplete,
		},
		outputs: []*awscloudformation.Output{{
			OutputKey:   awsaws.String("ArtifactBucket"),
			OutputValue: awsaws.String("deploy-bucket"),
		}},
	}
	d := testDeployer(cfn, true)
	result, err := d.Deploy(&Request{
		StackName:    "App-infra",
		TemplateBody: "{}",
		Parameters:   map[string]string{"AppName": "App", "InstanceType": "t3.micro"},
	})
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}
	if result.Declined {
		t.Error("Declined = true, want false")
	}
	if result.Outputs["ArtifactBucket"] != "deploy-bucket" {
		t.Errorf("Outputs = %v", result.Outputs)
	}

	created := cfn.created
	if created == nil {
		t.Fatal("CreateStack not called")
	}
	if len(created.Parameters) != 2 ||
		awsaws.StringValue(created.Parameters[0].ParameterKey) != "AppName" ||
		awsaws.StringValue(created.Parameters[1].ParameterKey) != "InstanceType" {
		t.Errorf("Parameters = %v, want sorted by key", created.Parameters)
	}
	if len(created.Capabilities) != 1 ||
		awsaws.StringValue(created.Capabilities[0]) != awscloudformation.CapabilityCapabilityNamedIam {
		t.Errorf("Capabilities = %v", created.Capabilities)
	}
	if awsaws.StringValue(created.ClientRequestToken) == "" {
		t.Error("ClientRequestToken is empty")
	}
	if len(created.Tags) != 1 || awsaws.StringValue(created.Tags[0].Value) != "shipctl" {
		t.Errorf("Tags = %v", created.Tags)
	}
}

func TestDeployDeclined(t *testing.T) {
	cfn := &mockCfn{
		statuses: []string{awscloudformation.StackStatusCreateComplete},
		outputs: []*awscloudformation.Output{{
			OutputKey:   awsaws.String("ServiceUrl"),
			OutputValue: awsaws.String("http://alb/"),
		}},
	}
	d := testDeployer(cfn, false)
	result, err := d.Deploy(&Request{StackName: "App-ecs", TemplateBody: "{}"})
	if err != nil {
		t.Fatalf("Deploy() = %v, declined confirmation is not an error", err)
	}
	if !result.Declined {
		t.Error("Declined = false, want true")
	}
	if result.Outputs["ServiceUrl"] != "http://alb/" {
		t.Errorf("Outputs = %v, want existing stack outputs", result.Outputs)
	}
	if cfn.created != nil || cfn.updated != nil || cfn.deleted != nil {
		t.Error("stack mutated after declined confirmation")
	}
}

func TestDeployTimeout(t *testing.T) {
	cfn := &mockCfn{
		statuses: []string{"", awscloudformation.StackStatusCreateInProgress},
	}
	d := testDeployer(cfn, true)
	_, err := d.Deploy(&Request{
		StackName:    "App-infra",
		TemplateBody: "{}",
		Timeout:      time.Nanosecond,
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Deploy() = %v, want ErrTimeout", err)
	}
}

func TestDeployRollbackDiagnosed(t *testing.T) {
	cfn := &mockCfn{
		statuses: []string{"", awscloudformation.StackStatusRollbackComplete},
		events: []*awscloudformation.StackEvent{{
			LogicalResourceId:    awsaws.String("DeployRole"),
			ResourceType:         awsaws.String("AWS::IAM::Role"),
			ResourceStatus:       awsaws.String(awscloudformation.ResourceStatusCreateFailed),
			ResourceStatusReason: awsaws.String("Cannot assume role"),
		}},
	}
	d := testDeployer(cfn, true)
	_, err := d.Deploy(&Request{StackName: "App-infra", TemplateBody: "{}"})
	if err == nil {
		t.Fatal("Deploy() = nil, want error")
	}
	if !strings.Contains(err.Error(), awscloudformation.StackStatusRollbackComplete) {
		t.Errorf("error = %v, want settled status in message", err)
	}
}

func TestDeployUpdateNoChanges(t *testing.T) {
	cfn := &mockCfn{
		statuses:  []string{awscloudformation.StackStatusUpdateComplete},
		updateErr: awserr.New("ValidationError", "No updates are to be performed.", nil),
	}
	d := testDeployer(cfn, true)
	result, err := d.Deploy(&Request{
		StackName:     "App-infra",
		TemplateBody:  "{}",
		UpdateInPlace: true,
	})
	if err != nil {
		t.Fatalf("Deploy() = %v, up-to-date stack is not an error", err)
	}
	if result.Declined {
		t.Error("Declined = true, want false")
	}
	if cfn.updated == nil {
		t.Error("UpdateStack not called")
	}
	if cfn.deleted != nil {
		t.Error("DeleteStack called for an in-place update")
	}
}

func TestDeployRecreate(t *testing.T) {
	cfn := &mockCfn{
		statuses: []string{
			awscloudformation.StackStatusCreateComplete, // existence query
			awscloudformation.StackStatusDeleteInProgress,
			"", // gone
			awscloudformation.StackStatusCreateComplete,
		},
	}
	d := testDeployer(cfn, true)
	_, err := d.Deploy(&Request{StackName: "App-ecs", TemplateBody: "{}"})
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}
	if cfn.deleted == nil {
		t.Error("DeleteStack not called")
	}
	if cfn.created == nil {
		t.Error("CreateStack not called after delete")
	}
	if cfn.updated != nil {
		t.Error("UpdateStack called for a recreate")
	}
}

func TestDeleteAbsentStack(t *testing.T) {
	cfn := &mockCfn{statuses: []string{""}}
	d := testDeployer(cfn, true)
	result, err := d.Delete("App-ecs", time.Minute)
	if err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if result.Declined {
		t.Error("Declined = true, want false")
	}
	if cfn.deleted != nil {
		t.Error("DeleteStack called for an absent stack")
	}
}

func TestTerminalStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{awscloudformation.StackStatusCreateInProgress, false},
		{awscloudformation.StackStatusUpdateRollbackInProgress, false},
		{awscloudformation.StackStatusCreateComplete, true},
		{awscloudformation.StackStatusCreateFailed, true},
		{awscloudformation.StackStatusRollbackComplete, true},
		{awscloudformation.StackStatusUpdateRollbackComplete, true},
	}
	for _, tt := range tests {
		if got := terminalStatus(tt.status); got != tt.want {
			t.Errorf("terminalStatus(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
