package main

import (
	"testing"

	"github.com/Zuo-Peng/wachat-insight/internal/config"
)

func TestInputsOrConfig(t *testing.T) {
	cfg = config.Default(t.TempDir())

	if _, err := inputsOrConfig(nil); err == nil {
		t.Error("expected an error without inputs")
	}

	cfg.Inputs = []string{"/data/chats"}
	got, err := inputsOrConfig(nil)
	if err != nil || len(got) != 1 || got[0] != "/data/chats" {
		t.Errorf("expected configured inputs, got %v, %v", got, err)
	}

	got, _ = inputsOrConfig([]string{"a.zip"})
	if len(got) != 1 || got[0] != "a.zip" {
		t.Errorf("arguments should win over config, got %v", got)
	}
}

func TestSearchOptionsFromFlags(t *testing.T) {
	ff := filterFlags{from: "2025-02-01", to: "2025-02-28", senders: []string{"~ Ravi"}}
	opts, err := searchOptions(&ff, "Positive", 20)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Since != "2025-02-01" || opts.Until != "2025-02-28" {
		t.Errorf("unexpected date bounds %q..%q", opts.Since, opts.Until)
	}
	if len(opts.Senders) != 1 || opts.Senders[0] != "~ Ravi" || opts.Label != "Positive" || opts.Limit != 20 {
		t.Errorf("unexpected options %+v", opts)
	}

	bad := filterFlags{from: "01/02/2025"}
	if _, err := searchOptions(&bad, "", 0); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

func TestRootCommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"analyze", "dashboard", "export", "serve", "sample", "index", "search", "list", "preview", "open", "doctor"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("missing command %q", name)
		}
	}
}
