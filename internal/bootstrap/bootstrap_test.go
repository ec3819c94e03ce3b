package bootstrap

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestEnsureBrokerSkipsSpawnWhenAlreadyListening(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "broker.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	defer l.Close()
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	err = EnsureBroker(context.Background(), sock, "/bin/nonexistent-should-never-run", nil, 1, 10*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error when socket already alive, got %v", err)
	}
}

func TestEnsureBrokerFailsWhenSpawnCommandMissing(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "broker.sock")

	err := EnsureBroker(context.Background(), sock, "/definitely/not/a/real/binary", nil, 1, 5*time.Millisecond, zerolog.Nop())
	if err == nil {
		t.Fatal("expected an error when the broker binary cannot be spawned")
	}
}
