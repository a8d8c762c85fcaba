package util

import (
	"testing"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2323", ":2323", false},
		{":2323", ":2323", false},
		{"127.0.0.1:8080", "127.0.0.1:8080", false},
		{" localhost:22 ", "localhost:22", false},
		{"[::1]:2222", "[::1]:2222", false},
		{"localhost", "", true},
		{":99999", "", true},
		{":telnet", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeAddr(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeAddr(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddr(t *testing.T) {
	if got := FormatAddr("1.2.3.4", 22); got != "1.2.3.4:22" {
		t.Errorf("got %q, want %q", got, "1.2.3.4:22")
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	if port < 1 || port > 65535 {
		t.Errorf("port %d out of range", port)
	}
}
