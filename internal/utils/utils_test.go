package utils

import "testing"

func TestConvertStrToInt(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    uint64
		wantErr bool
	}{
		{
			name: "hex with prefix",
			in:   "0x1000",
			want: 0x1000,
		},
		{
			name: "hex uppercase prefix",
			in:   "0X2000",
			want: 0x2000,
		},
		{
			name: "bare hex",
			in:   "dead",
			want: 0xdead,
		},
		{
			name: "decimal",
			in:   "4096",
			want: 4096,
		},
		{
			name:    "garbage",
			in:      "zzz",
			wantErr: true,
		},
		{
			name:    "negative",
			in:      "-12",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertStrToInt(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConvertStrToInt(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ConvertStrToInt(%q) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"two\nlines", `two\nlines`},
		{`back\slash`, `back\\slash`},
		{`say "hi"`, `say \"hi\"`},
	}
	for _, tt := range tests {
		if got := EscapeComment(tt.in); got != tt.want {
			t.Errorf("EscapeComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddr(t *testing.T) {
	if got := FormatAddr(0x1000); got != "0x1000" {
		t.Errorf("FormatAddr(0x1000) = %q, want %q", got, "0x1000")
	}
	if got := FormatAddr(0); got != "0x0" {
		t.Errorf("FormatAddr(0) = %q, want %q", got, "0x0")
	}
}
