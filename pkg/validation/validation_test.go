package validation

import "testing"

func TestValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{name: "known valid", cpf: "52998224725", want: true},
		{name: "formatted valid", cpf: "529.982.247-25", want: true},
		{name: "bad check digits", cpf: "52998224724", want: false},
		{name: "all identical digits", cpf: "11111111111", want: false},
		{name: "ten digits", cpf: "5299822472", want: false},
		{name: "twelve digits", cpf: "529982247250", want: false},
		{name: "empty", cpf: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCPF(tt.cpf); got != tt.want {
				t.Fatalf("ValidCPF(%q) = %v, want %v", tt.cpf, got, tt.want)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("joao@example.com.br") {
		t.Fatal("expected valid email")
	}
	if ValidEmail("not-an-email") {
		t.Fatal("expected invalid email")
	}
	if ValidEmail("a@b") {
		t.Fatal("missing TLD should be invalid")
	}
}

func TestValidPhone(t *testing.T) {
	if !ValidPhone("(11) 98765-4321") {
		t.Fatal("11-digit phone should be valid")
	}
	if !ValidPhone("1187654321") {
		t.Fatal("10-digit phone should be valid")
	}
	if ValidPhone("876-54321") {
		t.Fatal("short phone should be invalid")
	}
}

func TestNormalizeCPF(t *testing.T) {
	if got := NormalizeCPF("529.982.247-25"); got != "52998224725" {
		t.Fatalf("unexpected normalization %q", got)
	}
}
