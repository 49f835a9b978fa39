package core

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain ascii", []byte("fullName,phone\nRavi,9876543210"), "fullName,phone\nRavi,9876543210"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "fullName"...), "fullName"},
		{"bom only", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"valid utf8 kept", []byte("Zirakpur – Café"), "Zirakpur – Café"},
		{"invalid byte replaced", []byte("Ravi\xffKumar"), "Ravi�Kumar"},
		{"truncated rune replaced", []byte("Ravi\xe2\x82"), "Ravi�"},
		{"nul removed", []byte("Ra\x00vi"), "Ravi"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.in); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadTableSanitizesCSV(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "fullName,notes\nRavi,bad\xffbyte\n"...)
	headers, rows, err := readTable(FormatCSV, data)
	if err != nil {
		t.Fatalf("readTable() error = %v", err)
	}
	if headers[0] != "fullName" {
		t.Errorf("headers[0] = %q, want fullName", headers[0])
	}
	if rows[0][1] != "bad�byte" {
		t.Errorf("rows[0][1] = %q", rows[0][1])
	}
}
