package db

import (
	"testing"

	"zappy/internal/shared/serverconfig"
)

func TestDialector_按驱动选择(t *testing.T) {
	cases := map[string]string{
		"":         "mysql",
		"MySQL":    "mysql",
		"postgres": "postgres",
	}
	for driver, want := range cases {
		d, err := Dialector(serverconfig.DatabaseConfig{Driver: driver, Host: "127.0.0.1", Port: 1})
		if err != nil {
			t.Fatalf("driver=%q err=%v", driver, err)
		}
		if d.Name() != want {
			t.Fatalf("driver=%q name=%q, want %q", driver, d.Name(), want)
		}
	}
	if _, err := Dialector(serverconfig.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("期望不支持的驱动报错")
	}
}
