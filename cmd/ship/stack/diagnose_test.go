package stack

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{
			"Should suggest trust policy",
			"API: sts:AssumeRole User is not authorized to perform: sts:AssumeRole",
			"trust policy",
		},
		{
			"Should suggest network check",
			"The subnet ID 'subnet-0123' does not exist",
			"network identifiers",
		},
		{
			"Should suggest provisioning the cluster",
			"Cluster not found.",
			"provision --target ecs",
		},
		{
			"Should suggest certificate check",
			"Certificate ARN is not valid",
			"certificate ARN",
		},
		{
			"Should stay quiet on unknown reasons",
			"Internal Failure",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.reason)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Suggest() = %q, want no suggestion", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Suggest() = %q, want mention of %q", got, tt.want)
			}
		})
	}
}
