package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://example.test/", "/cars/x?cd=1", "https://example.test/cars/x?cd=1"},
		{"https://example.test/", "https://other.test/a", "https://other.test/a"},
		{"https://example.test/", "item_1", "https://example.test/item_1"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestWithPage(t *testing.T) {
	if got := WithPage("https://example.test/x?cd=1", 2); got != "https://example.test/x?cd=1&p=2" {
		t.Errorf("Expected '&' join, got %s", got)
	}
	if got := WithPage("https://example.test/x", 2); got != "https://example.test/x?p=2" {
		t.Errorf("Expected '?' join, got %s", got)
	}
}
