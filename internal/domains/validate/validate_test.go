package validate

import "testing"

func TestIsValidDomain(t *testing.T) {
	valid := []string{
		"example.com",
		"track.acme.com",
		"a-b.example.co.uk",
		"xn--bcher-kva.example",
		"1234.example.com",
	}
	for _, hostname := range valid {
		if !IsValidDomain(hostname) {
			t.Errorf("expected %q to be valid", hostname)
		}
	}

	invalid := []string{
		"",
		"localhost",
		"example",
		".example.com",
		"example..com",
		"example.com.",
		"-example.com",
		"example-.com",
		"*.example.com",
		"exa mple.com",
		"exämple.com",
		"example.com/path",
	}
	for _, hostname := range invalid {
		if IsValidDomain(hostname) {
			t.Errorf("expected %q to be invalid", hostname)
		}
	}
}

func TestIsValidSubdomainLabel(t *testing.T) {
	valid := []string{"acme", "acme-qr", "abc", "a1b2c3", "333"}
	for _, label := range valid {
		if !IsValidSubdomainLabel(label) {
			t.Errorf("expected %q to be valid", label)
		}
	}

	invalid := []string{
		"",
		"ab",
		"-acme",
		"acme-",
		"Acme",
		"acme.app",
		"acme_qr",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 64 chars
	}
	for _, label := range invalid {
		if IsValidSubdomainLabel(label) {
			t.Errorf("expected %q to be invalid", label)
		}
	}
}
