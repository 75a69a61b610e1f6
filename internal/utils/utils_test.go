package utils

import (
	"reflect"
	"testing"
)

func TestDedupe(t *testing.T) {
	testCases := []struct {
		input    []string
		expected []string
	}{
		{nil, []string{}},
		{[]string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{[]string{"北京", "北京"}, []string{"北京"}},
		{[]string{"a", "A"}, []string{"a", "A"}}, // byte identity, no folding
	}
	for _, tc := range testCases {
		if got := Dedupe(tc.input); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Dedupe(%v) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestGraphemes(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"abc", []string{"a", "b", "c"}},
		{"北京", []string{"北", "京"}},
		{"ét", []string{"é", "t"}}, // combining accent stays attached
	}
	for _, tc := range testCases {
		if got := Graphemes(tc.input); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Graphemes(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
