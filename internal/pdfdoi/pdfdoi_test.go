package pdfdoi

import "testing"

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare doi", "doi: 10.1093/molbev/msy096 published", "10.1093/molbev/msy096"},
		{"trailing period", "see https://doi.org/10.1234/abc.def.", "10.1234/abc.def"},
		{"trailing paren", "(10.1234/xyz)", "10.1234/xyz"},
		{"none", "no identifier in this text", ""},
		{"not a doi", "version 10.2 of the standard", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.text); got != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
