// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "testing"

func TestPathBuilding(t *testing.T) {
	tests := []struct {
		name string
		path *Path
		want string
	}{
		{name: "root", path: NewPath("server"), want: "server"},
		{name: "child", path: NewPath("server").Child("port"), want: "server.port"},
		{name: "nested child", path: NewPath("execution").Child("retry").Child("delay"), want: "execution.retry.delay"},
		{name: "index", path: NewPath("server").Child("origins").Index(2), want: "server.origins[2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationHelpers(t *testing.T) {
	p := NewPath("server").Child("port")

	if err := MustBeInRange(p, 16080, 1, 65535); err != nil {
		t.Errorf("valid port reported error: %v", err)
	}
	if err := MustBeInRange(p, 0, 1, 65535); err == nil {
		t.Error("port 0 should be out of range")
	}
	if err := MustBeNonNegative(p, -1); err == nil {
		t.Error("negative value should fail")
	}
	if err := MustBeOneOf(p, "info", []string{"debug", "info", "warn", "error"}); err != nil {
		t.Errorf("allowed value reported error: %v", err)
	}
	if err := MustBeOneOf(p, "verbose", []string{"debug", "info"}); err == nil {
		t.Error("disallowed value should fail")
	}
	if err := MustNotBeEmpty(p, ""); err == nil {
		t.Error("empty string should fail")
	}
}

func TestValidationErrorsOrNil(t *testing.T) {
	var errs ValidationErrors
	if errs.OrNil() != nil {
		t.Error("empty ValidationErrors should be nil")
	}

	errs = append(errs, Required(NewPath("storage").Child("database_path")))
	err := errs.OrNil()
	if err == nil {
		t.Fatal("non-empty ValidationErrors should be an error")
	}
	if got := err.Error(); got != "- storage.database_path: is required" {
		t.Errorf("error format = %q", got)
	}
}
