package utils

import (
	"strings"
	"testing"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		expected bool
	}{
		{"empty is valid, field is optional", "", true},
		{"valid unformatted", "52998224725", true},
		{"valid formatted", "529.982.247-25", true},
		{"valid second sample", "111.444.777-35", true},
		{"first check digit flipped", "529.982.247-35", false},
		{"second check digit flipped", "529.982.247-24", false},
		{"all same digit", "111.111.111-11", false},
		{"all zeros", "00000000000", false},
		{"too short", "5299822472", false},
		{"too long", "529982247255", false},
		{"letters only", "abcdefghijk", false},
		{"digits buried in text still count", "529a982b247c25", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateCPF(tt.cpf); got != tt.expected {
				t.Errorf("ValidateCPF(%q) = %v, expected %v", tt.cpf, got, tt.expected)
			}
		})
	}
}

func TestFormatCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		expected string
	}{
		{"bare digits", "52998224725", "529.982.247-25"},
		{"already formatted", "529.982.247-25", "529.982.247-25"},
		{"empty", "", ""},
		{"wrong length returns stripped", "1234", "1234"},
		{"strips stray punctuation", "529-982-247/25", "529.982.247-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCPF(tt.cpf); got != tt.expected {
				t.Errorf("FormatCPF(%q) = %q, expected %q", tt.cpf, got, tt.expected)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"landline 10 digits", "5135551234", "(51) 3555-1234"},
		{"mobile 11 digits", "51995551234", "(51) 99555-1234"},
		{"already formatted mobile", "(51) 99555-1234", "(51) 99555-1234"},
		{"empty", "", ""},
		{"unrecognized length returned as given", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPhone(tt.phone); got != tt.expected {
				t.Errorf("FormatPhone(%q) = %q, expected %q", tt.phone, got, tt.expected)
			}
		})
	}
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     string
	}{
		{"jpeg under limit", "casa.jpg", "image/jpeg", 1024, ""},
		{"png at exact limit", "frente.png", "image/png", MaxFotoBytes, ""},
		{"one byte over limit", "fundos.jpg", "image/jpeg", MaxFotoBytes + 1, "muito grande"},
		{"pdf rejected", "laudo.pdf", "application/pdf", 1024, "não é uma imagem"},
		{"empty content type rejected", "foto.jpg", "", 1024, "não é uma imagem"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFile(tt.filename, tt.contentType, tt.size)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateImageFile(%q) = %v, expected nil", tt.filename, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateImageFile(%q) = nil, expected error containing %q", tt.filename, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateImageFile(%q) = %q, expected to contain %q", tt.filename, err.Error(), tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.filename) {
				t.Errorf("error %q does not name the offending file %q", err.Error(), tt.filename)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"operador@saoleopoldo.rs.gov.br", true},
		{"a@b.co", true},
		{"sem-arroba.com", false},
		{"espaco no@dominio.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.expected {
			t.Errorf("ValidateEmail(%q) = %v, expected %v", tt.email, got, tt.expected)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  muro   com  rachaduras  ", "muro com rachaduras"},
		{"linha\nquebrada\ttab", "linha quebrada tab"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.expected {
			t.Errorf("SanitizeText(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
