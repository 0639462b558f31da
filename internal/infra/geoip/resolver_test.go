package geoip

import (
	"errors"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
)

func TestOpenEmptyPath(t *testing.T) {
	r, err := Open("  ")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if r != nil {
		t.Fatal("expected nil resolver for empty path")
	}
	if _, err := r.CountryCode("203.0.113.4"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if r.Lookup() != nil {
		t.Fatal("expected nil lookup")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

type fakeReader struct {
	calls int
	byIP  map[string]*geoip2.Country
}

func (f *fakeReader) Country(ip net.IP) (*geoip2.Country, error) {
	f.calls++
	if rec, ok := f.byIP[ip.String()]; ok {
		return rec, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeReader) Close() error { return nil }

func country(iso, registered string) *geoip2.Country {
	rec := &geoip2.Country{}
	rec.Country.IsoCode = iso
	rec.RegisteredCountry.IsoCode = registered
	return rec
}

func TestCountryCode(t *testing.T) {
	reader := &fakeReader{byIP: map[string]*geoip2.Country{
		"203.0.113.4":  country("BR", "BR"),
		"198.51.100.7": country("", "DE"),
		"2001:db8::1":  country("FR", ""),
	}}
	r := newResolver(reader, 2)

	cases := []struct {
		ip      string
		want    string
		wantErr bool
	}{
		{"203.0.113.4", "BR", false},
		{"203.0.113.4:51234", "BR", false},
		{"198.51.100.7", "DE", false},
		{"[2001:db8::1]:443", "FR", false},
		{"10.1.2.3", "", false},
		{"127.0.0.1", "", false},
		{"not-an-ip", "", true},
		{"192.0.2.99", "", true},
	}
	for _, tc := range cases {
		got, err := r.CountryCode(tc.ip)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err = %v", tc.ip, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.ip, got, tc.want)
		}
	}
}

func TestCountryCodeCache(t *testing.T) {
	reader := &fakeReader{byIP: map[string]*geoip2.Country{
		"203.0.113.4": country("BR", ""),
		"203.0.113.5": country("PT", ""),
		"203.0.113.6": country("ES", ""),
	}}
	r := newResolver(reader, 2)
	for i := 0; i < 3; i++ {
		if _, err := r.CountryCode("203.0.113.4"); err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if reader.calls != 1 {
		t.Fatalf("expected one database hit, got %d", reader.calls)
	}
	_, _ = r.CountryCode("203.0.113.5")
	_, _ = r.CountryCode("203.0.113.6")
	if len(r.cache) > 2 {
		t.Fatalf("cache grew to %d", len(r.cache))
	}
	if r.Lookup() == nil {
		t.Fatal("expected lookup func")
	}
}
