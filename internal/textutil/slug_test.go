package textutil

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kickoff", "kickoff"},
		{"  Intro to Neural Nets ", "intro-to-neural-nets"},
		{"Café & Crêpes", "cafe-crepes"},
		{"Bayes' Rule", "bayes-rule"},
		{"GANs: Part 2!", "gans-part-2"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("data science"); got != "Data Science" {
		t.Fatalf("TitleCase = %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Attention Is All You Need": "attention_is_all_you_need",
		"1706.03762v7":              "1706_03762v7",
		"  ":                        "unknown",
		"???":                       "unknown",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
