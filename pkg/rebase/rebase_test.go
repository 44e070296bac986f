package rebase

import (
	"errors"
	"testing"
)

func TestRebase(t *testing.T) {
	src := []Section{{Name: ".text", Start: 0x1000, End: 0x2000}}
	target := Sections{{Name: ".text", Start: 0x4000, End: 0x5000}}

	tests := []struct {
		name    string
		addr    uint64
		want    uint64
		wantErr bool
	}{
		{
			name: "interior",
			addr: 0x1100,
			want: 0x4100,
		},
		{
			name: "section start",
			addr: 0x1000,
			want: 0x4000,
		},
		{
			name: "last byte",
			addr: 0x1fff,
			want: 0x4fff,
		},
		{
			name:    "end is exclusive",
			addr:    0x2000,
			wantErr: true,
		},
		{
			name:    "below all sections",
			addr:    0x500,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rebase(src, target, tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Rebase(%#x) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Rebase(%#x) = %#x, want %#x", tt.addr, got, tt.want)
			}
			if err != nil {
				var nm *NotMappableError
				if !errors.As(err, &nm) {
					t.Errorf("expected *NotMappableError, got %T", err)
				}
			}
		})
	}
}

func TestRebaseMissingTargetSection(t *testing.T) {
	src := []Section{{Name: ".rodata", Start: 0x3000, End: 0x4000}}
	target := Sections{{Name: ".text", Start: 0x4000, End: 0x5000}}

	_, err := Rebase(src, target, 0x3010)
	var nm *NotMappableError
	if !errors.As(err, &nm) {
		t.Fatalf("expected *NotMappableError, got %v", err)
	}
	if nm.Section != ".rodata" {
		t.Errorf("error section = %q, want .rodata", nm.Section)
	}
}

func TestRebaseMultipleSections(t *testing.T) {
	src := []Section{
		{Name: ".text", Start: 0x1000, End: 0x2000},
		{Name: ".data", Start: 0x2000, End: 0x3000},
	}
	target := Sections{
		{Name: ".data", Start: 0x8000, End: 0x9000},
		{Name: ".text", Start: 0x4000, End: 0x5000},
	}

	if got, err := Rebase(src, target, 0x2004); err != nil || got != 0x8004 {
		t.Errorf("Rebase(0x2004) = %#x, %v; want 0x8004", got, err)
	}
	if got, err := Rebase(src, target, 0x1004); err != nil || got != 0x4004 {
		t.Errorf("Rebase(0x1004) = %#x, %v; want 0x4004", got, err)
	}
}
