package rest

import (
	"errors"
	"net/url"
	"testing"
)

func TestParamsEncode(t *testing.T) {
	cases := []struct {
		name string
		set  [][2]string
		want string
	}{
		{name: "empty", want: ""},
		{name: "single", set: [][2]string{{"foo", "bar"}}, want: "foo=bar"},
		{name: "insertion order", set: [][2]string{{"b", "2"}, {"a", "1"}}, want: "b=2&a=1"},
		{name: "spaces become plus", set: [][2]string{{"multi part", "has white space"}}, want: "multi+part=has+white+space"},
		{name: "reserved characters", set: [][2]string{{"k", "a&b=c/d?e"}}, want: "k=a%26b%3Dc%2Fd%3Fe"},
		{name: "non ascii", set: [][2]string{{"city", "Zürich"}}, want: "city=Z%C3%BCrich"},
		{name: "last write wins in place", set: [][2]string{{"a", "1"}, {"b", "2"}, {"a", "3"}}, want: "a=3&b=2"},
		{name: "empty value", set: [][2]string{{"flag", ""}}, want: "flag="},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p Params
			for _, kv := range tc.set {
				p.Set(kv[0], kv[1])
			}
			got, err := p.Encode()
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Encode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	values := []string{
		"this parameter has whitespace in its name and value",
		"punctuation: !@#$%^&*()+=,.;'\"[]{}",
		"plus+sign and space",
	}
	for _, v := range values {
		var p Params
		p.Set("v", v)
		encoded, err := p.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		decoded, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", encoded, err)
		}
		if got := decoded.Get("v"); got != v {
			t.Fatalf("round trip = %q, want %q", got, v)
		}
	}
}

func TestParamsRejectInvalidUTF8(t *testing.T) {
	var p Params
	p.Set("ok", string([]byte{0xff, 0xfe}))
	if _, err := p.Encode(); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}
