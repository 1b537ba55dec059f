package domain

import "testing"

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		tag  string
		want Locale
	}{
		{"", LocaleArabic},
		{"ar", LocaleArabic},
		{"arabic", LocaleArabic},
		{"ar-SA", LocaleArabic},
		{"en", LocaleEnglish},
		{"english", LocaleEnglish},
		{"en-US", LocaleEnglish},
		{"EN", LocaleEnglish},
		{"fr", LocaleArabic},
		{"not a tag", LocaleArabic},
	}
	for _, tc := range tests {
		if got := ResolveLocale(tc.tag); got != tc.want {
			t.Errorf("ResolveLocale(%q) = %s, want %s", tc.tag, got, tc.want)
		}
	}
}

func TestMessageFallsBackToEnglish(t *testing.T) {
	if got := Locale("de").Message(MsgAtLastPage); got != "Already at last page" {
		t.Fatalf("expected english fallback, got %q", got)
	}
}

func TestContainsArabic(t *testing.T) {
	if !ContainsArabic("انتقل إلى الصفحة 5") {
		t.Fatal("expected arabic detected")
	}
	if ContainsArabic("go to page 5") {
		t.Fatal("expected no arabic in latin text")
	}
}
