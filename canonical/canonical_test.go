package canonical

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Unix(1254164592, 0), "2009-09-28T19:03:12Z"},
		{time.Date(2003, 1, 5, 4, 9, 2, 0, time.UTC), "2003-01-05T04:09:02Z"},
		{time.Date(2009, 9, 28, 14, 3, 12, 0, time.FixedZone("EST", -5*60*60)), "2009-09-28T19:03:12Z"},
		{time.Date(2020, 12, 31, 23, 59, 59, 999999999, time.UTC), "2020-12-31T23:59:59Z"},
	}
	for _, c := range cases {
		got := FormatTimestamp(c.in)
		if got != c.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"-._~", "-._~"},
		{"a b&c", "a%20b%26c"},
		{"k=v", "k%3Dv"},
		{"10%", "10%25"},
		{"a+b", "a%2Bb"},
		{"/path?q", "%2Fpath%3Fq"},
		{"£", "%C2%A3"},
		{"日", "%E6%97%A5"},
	}
	for _, c := range cases {
		got := Escape(c.in)
		if got != c.want {
			t.Fatalf("Escape(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEncodeParams(t *testing.T) {
	got := EncodeParams(map[string]string{"b": "2", "a": "1"})
	if got != "a=1&b=2" {
		t.Fatalf("expected %q, got %q", "a=1&b=2", got)
	}

	if got := EncodeParams(nil); got != "" {
		t.Fatalf("expected empty string for nil params, got %q", got)
	}
	if got := EncodeParams(map[string]string{}); got != "" {
		t.Fatalf("expected empty string for empty params, got %q", got)
	}

	got = EncodeParams(map[string]string{"q": "a b&c"})
	if got != "q=a%20b%26c" {
		t.Fatalf("expected %q, got %q", "q=a%20b%26c", got)
	}

	// Pairs sort as whole strings: '%' < '=', so the escaped "a b" key
	// sorts before the bare "a" key even though "a" < "a b" raw.
	got = EncodeParams(map[string]string{"a": "z", "a b": "1"})
	if got != "a%20b=1&a=z" {
		t.Fatalf("expected %q, got %q", "a%20b=1&a=z", got)
	}
}

func TestEncodeParamsDeterministic(t *testing.T) {
	params := map[string]string{
		"window":     "7d",
		"metric":     "memory used",
		"format":     "json",
		"maxrows":    "100",
		"public_key": "abc",
	}
	first := EncodeParams(params)
	for i := 0; i < 100; i++ {
		if got := EncodeParams(params); got != first {
			t.Fatalf("iteration %d produced %q, first call produced %q", i, got, first)
		}
	}
}

func TestStringToSign(t *testing.T) {
	got := StringToSign("get", "/api/v1/report", map[string]string{
		"window": "7d",
		"metric": "memory used",
	})
	want := "GET\n/api/v1/report\nmetric=memory%20used&window=7d"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = StringToSign("POST", "/p", nil)
	want = "POST\n/p\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
