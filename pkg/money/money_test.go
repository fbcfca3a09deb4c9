package money

import (
	"testing"

	"golang.org/x/text/language"
)

func TestLineTotalAndSum(t *testing.T) {
	if got := LineTotal(10000, 2); got != 20000 {
		t.Fatalf("expected 20000, got %d", got)
	}
	if got := Sum(20000, 10000, 30000); got != 60000 {
		t.Fatalf("expected 60000, got %d", got)
	}
	if got := Sum(); got != 0 {
		t.Fatalf("empty sum should be zero, got %d", got)
	}
}

func TestParseRespectsExponent(t *testing.T) {
	got, err := Parse("12.50", "USD")
	if err != nil || got != 1250 {
		t.Fatalf("expected 1250, got %d err %v", got, err)
	}
	if _, err := Parse("1.5", "VND"); err == nil {
		t.Fatal("VND has no minor units")
	}
	if _, err := Parse("abc", "VND"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFormatEnglishGrouping(t *testing.T) {
	if got := Format(language.English, 30000, "VND"); got != "30,000 VND" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := Format(language.English, 123456, "usd"); got != "1,234.56 USD" {
		t.Fatalf("unexpected format %q", got)
	}
}
