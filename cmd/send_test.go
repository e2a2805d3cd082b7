package cmd

import "testing"

func TestParseHexString(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"48656c6c6f", "Hello", false},
		{"48 65 6C 6C 6F", "Hello", false},
		{"0x410x42", "AB", false},
		{"0X0d0X0a", "\r\n", false},
		{"", "", false},
		{"414", "", true},
		{"zz", "", true},
	}

	for _, tt := range tests {
		got, err := parseHexString(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHexString(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("AT\r\n"); got != "AT··" {
		t.Errorf("preview = %q", got)
	}

	long := "0123456789012345678901234567890123456789012345678901234567890"
	if got := preview(long); got != long[:50]+"..." {
		t.Errorf("preview = %q", got)
	}
}
