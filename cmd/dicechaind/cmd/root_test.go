package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCmd_ResolvesFlagsEnvAndFile(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("chain_id = \"from-file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DICE_GAME_NFT_MINTER", "0xminter")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--home", home, "--log.level", "debug"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`chain_id = "from-file"`,
		`game.nft_minter = "0xminter"`,
		`log.level = "debug"`,
		`db.dsn = "` + filepath.Join(home, "data", "dice.db") + `"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestConfigCmd_RejectsBadRule(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "--home", t.TempDir()})
	t.Setenv("DICE_GAME_MATCH_END_RULE", "sudden-death")
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown match end rule")
	}
}
