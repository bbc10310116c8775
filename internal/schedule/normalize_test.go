package schedule

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Fyzika tělesa", "Fyzika telesa"},
		{"Český jazyk", "Cesky jazyk"},
		{"Matematika", "Matematika"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RemoveDiacritics(tt.input); got != tt.expected {
			t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSubjectSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Český jazyk", "cesky-jazyk"},
		{"  Fyzika  ", "fyzika"},
		{"Dějepis a zeměpis", "dejepis-a-zemepis"},
		{"MATEMATIKA", "matematika"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SubjectSlug(tt.input); got != tt.expected {
			t.Errorf("SubjectSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
