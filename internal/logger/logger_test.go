package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesJSON(t *testing.T) {
	root := t.TempDir()
	log, closeFn, err := New(Options{Root: root, Level: "debug"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("section rendered", zap.String("identifier", "hero-banner"))
	if zap.L() != log {
		t.Fatal("logger not installed globally")
	}
	closeFn()

	b, err := os.ReadFile(filepath.Join(root, "logs", "sitebuilder.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"msg":"logger online"`, `"identifier":"hero-banner"`, `"level":"debug"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %s:\n%s", want, out)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, _, err := New(Options{Root: t.TempDir(), Level: "chatty"}); err == nil {
		t.Fatal("unknown level accepted")
	}
}
