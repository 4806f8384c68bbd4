package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honkdrop/field"
	"honkdrop/internal/hashsvc"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashCommand(t *testing.T) {
	out, err := run(t, "hash", "0x0", "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0x0dd6d785caa3fe1ad139a40b6bd26fccbd6c8697573b0e34489c740533db5cc8\n", out)

	out, err = run(t, "hash", "--variable", "0", "1")
	require.NoError(t, err)
	assert.Equal(t, "0x200b35d9d61143fbb704182a052aa2f8a2f7bdc7730757de834f389a5c685170\n", out)

	out, err = run(t, "hash", "-n", "4", "1", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "0x0821861557"))
}

func TestHashCommandJSON(t *testing.T) {
	out, err := run(t, "hash", "--json", "1", "2", "3")
	require.NoError(t, err)
	var resp hashsvc.HashResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Digest, 1)
	assert.Equal(t, "0x23864adb160dddf590f1d3303683ebcb914f828e2635f6e85a32f0a1aecd3dd8", resp.Digest[0].Hex())
}

func TestHashCommandCBOR(t *testing.T) {
	out, err := run(t, "hash", "--cbor", "1", "2", "3")
	require.NoError(t, err)
	var resp hashsvc.HashResponse
	require.NoError(t, field.DecodeCBOR([]byte(out), &resp))
	require.Len(t, resp.Digest, 1)
	assert.Equal(t, "0x23864adb160dddf590f1d3303683ebcb914f828e2635f6e85a32f0a1aecd3dd8", resp.Digest[0].Hex())

	_, err = run(t, "hash", "--cbor", "--json", "1")
	assert.Error(t, err)
}

func TestHashCommandRejectsBadInput(t *testing.T) {
	_, err := run(t, "hash", field.Modulus)
	assert.Error(t, err)

	out, err := run(t, "hash", "--reduce", field.Modulus, "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0x0dd6d785caa3fe1ad139a40b6bd26fccbd6c8697573b0e34489c740533db5cc8\n", out)

	_, err = run(t, "hash", "xyz")
	assert.Error(t, err)

	_, err = run(t, "hash", "-n", "0", "1")
	assert.Error(t, err)
}

func TestSelfTestCommand(t *testing.T) {
	out, err := run(t, "selftest")
	require.NoError(t, err)
	assert.Contains(t, out, "ok bn254-t4-rf8-rp56-barretenberg")
}

func TestServeStopsWhenCancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	l, err := newLogger("error", "", "", &bytes.Buffer{})
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, cfg, l))
}
