package database

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@db:3306/estate?useSSL=false&serverTimezone=UTC", "", "")
	if !strings.HasPrefix(got, "root:pw@tcp(db:3306)/estate?") {
		t.Fatalf("unexpected dsn %q", got)
	}
	for _, want := range []string{"tls=false", "loc=UTC", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestNormalizeMySQLDSNOverrides(t *testing.T) {
	got := normalizeMySQLDSN("mysql://a:b@db/estate", "svc", "secret")
	if !strings.HasPrefix(got, "svc:secret@tcp(db)/estate") {
		t.Errorf("expected override credentials, got %q", got)
	}
}

func TestNormalizeMySQLDSNPassthrough(t *testing.T) {
	in := "u:p@tcp(localhost:3306)/estate?parseTime=true"
	if got := normalizeMySQLDSN(in, "x", "y"); got != in {
		t.Errorf("expected native DSN unchanged, got %q", got)
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("u:secret@tcp(db)/x"); got != "u:****@tcp(db)/x" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := MaskDSN("host=db user=u"); got != "host=db user=u" {
		t.Errorf("expected DSN without credentials unchanged, got %q", got)
	}
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	if _, err := NewGorm(Opts{Driver: "oracle"}); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}
}
