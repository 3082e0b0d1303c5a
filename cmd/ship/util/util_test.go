package util_test

import (
	"errors"
	"reflect"
	"testing"

	. "github.com/stackship/shipctl/cmd/ship/util"
)

func TestErrors(t *testing.T) {
	type args struct {
		sep         string
		maybeErrors []error
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{"Should return (no errors)", args{"", nil}, "(no errors)"},
		{
			"Should return 'error1'",
			args{"", []error{errors.New("error1")}},
			"error1",
		},
		{
			"Should return 'error1, error2'",
			args{"", []error{errors.New("error1"), errors.New("error2")}},
			"error1, error2",
		},
		{
			"Should collapse duplicates",
			args{"", []error{errors.New("error1"), errors.New("error1")}},
			"error1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Errors(tt.args.sep, tt.args.maybeErrors...); got != tt.want {
				t.Errorf("Errors() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"Should return empty for no values", nil, ""},
		{"Should return first non-empty", []string{"", "a", "b"}, "a"},
		{"Should return first", []string{"a", "b"}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coalesce(tt.values...); got != tt.want {
				t.Errorf("Coalesce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniqInOrder(t *testing.T) {
	tests := []struct {
		name   string
		source []string
		want   []string
	}{
		{"Should return empty array", nil, []string{}},
		{"Should return uniq array", []string{"1", "1", "2", "3", "3"}, []string{"1", "2", "3"}},
		{"Should keep first occurrence order", []string{"2", "1", "5", "3", "4", "3", "4"}, []string{"2", "1", "5", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqInOrder(tt.source); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqInOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseKvList(t *testing.T) {
	type args struct {
		list string
	}
	tests := []struct {
		name    string
		args    args
		want    map[string]string
		wantErr bool
	}{
		{"Should return empty map", args{""}, map[string]string{}, false},
		{"Should parse single pair", args{"a=1"}, map[string]string{"a": "1"}, false},
		{"Should parse pairs", args{"a=1,b=2"}, map[string]string{"a": "1", "b": "2"}, false},
		{"Should keep = in value", args{"a=1=2"}, map[string]string{"a": "1=2"}, false},
		{"Should fail on non-pair", args{"a"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKvList(tt.args.list)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseKvList() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKvList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		name string
		size int
		noun []string
		want string
	}{
		{"Should return singular", 1, []string{"parameter"}, "parameter"},
		{"Should return plural", 2, []string{"parameter"}, "parameters"},
		{"Should return supplied plural", 3, []string{"is", "are"}, "are"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plural(tt.size, tt.noun...); got != tt.want {
				t.Errorf("Plural() = %v, want %v", got, tt.want)
			}
		})
	}
}
