package resolver

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://WWW.Example.com/foo", "example.com"},
		{"http://example.com:8080/path?q=1", "example.com"},
		{"www.example.co.uk", "example.co.uk"},
		{"blog.shop.example.co.uk", "example.co.uk"},
		{"example.com # main site", "example.com"},
		{"example.com some trailing note", "example.com"},
		{"  ftp://sub.example.org/dir  ", "example.org"},
		{"user@mail.example.com", "example.com"},
		{"", ""},
		{"   ", ""},
		{"# just a comment", ""},
		{"localhost", ""},
		{"no-dot-here", ""},
		{"https://", ""},
	}
	for _, tt := range tests {
		if got := Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"example.com", "example.co.uk", "xn--bcher-kva.ch"}
	for _, in := range inputs {
		once := Resolve(in)
		if once == "" {
			t.Fatalf("Resolve(%q) rejected a valid domain", in)
		}
		if twice := Resolve(once); twice != once {
			t.Errorf("Resolve not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSecondLevelLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme.com", "acme"},
		{"acme.co.uk", "acme"},
		{"example.org", "example"},
	}
	for _, tt := range tests {
		if got := SecondLevelLabel(tt.in); got != tt.want {
			t.Errorf("SecondLevelLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
