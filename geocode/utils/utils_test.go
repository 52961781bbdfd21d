// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import "testing"

func TestLowerASCIIFolding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jirón", "jiron"},
		{"jiron", "jiron"},
		{"  Avenida EJÉRCITO  ", "avenida ejercito"},
		{"Málecón", "malecon"},
		{"Unión", "union"},
		{"Año Nuevo", "ano nuevo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := LowerASCIIFolding(tt.in); got != tt.want {
				t.Errorf("LowerASCIIFolding(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a  b", "a b"},
		{"  a \t b \n c  ", "a b c"},
		{"single", "single"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := CollapseSpaces(tt.in); got != tt.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}

	for _, tt := range tests {
		if got := FormatInt(tt.in); got != tt.want {
			t.Errorf("FormatInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
