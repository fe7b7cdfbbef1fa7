package domain

import (
	"math/big"
	"testing"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    string // wei
		wantErr bool
	}{
		{"1", "1000000000000000000", false},
		{"100", "100000000000000000000", false},
		{"0.5", "500000000000000000", false},
		{"0", "0", false},
		{"-1", "", true},
		{"abc", "", true},
		{"0.0000000000000000001", "", true}, // 19 decimals
		{"1e100", "", true},                 // exceeds uint256 in wei
		{"1e60", "", true},
	}

	for _, tt := range tests {
		got, err := ParseUnits(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseUnits(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseUnits(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseUnits(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := FormatUnits(wei); got != "1.5" {
		t.Errorf("FormatUnits = %s, want 1.5", got)
	}
	if got := FormatUnits(nil); got != "0" {
		t.Errorf("FormatUnits(nil) = %s, want 0", got)
	}
}
