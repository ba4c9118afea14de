package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"decvm/machine"
)

func newTestShell(t *testing.T, in string) (*Shell, *bytes.Buffer) {
	t.Helper()
	m, err := machine.New(filepath.Join(t.TempDir(), "disk.bin"), "")
	assert.NoError(t, err)
	var out bytes.Buffer
	return New(m, strings.NewReader(in), &out), &out
}

func TestHelpAndUnknownCommand(t *testing.T) {
	s, out := newTestShell(t, "help\nbogus\nexit\n")
	assert.NoError(t, s.Run())
	assert.Contains(t, out.String(), "Comandos Disponibles")
	assert.Contains(t, out.String(), "Comando desconocido.")
}

func TestLoadRunAndRegisters(t *testing.T) {
	progPath := filepath.Join(t.TempDir(), "prog.asm")
	src := "_start 300\n4100012\n100030\n9999999\n"
	assert.NoError(t, os.WriteFile(progPath, []byte(src), 0o644))

	s, out := newTestShell(t, "load "+progPath+"\nrun\nregisters\nexit\n")
	assert.NoError(t, s.Run())

	got := out.String()
	assert.Contains(t, got, "instrucciones en 300")
	assert.Contains(t, got, "Registros CPU")
	assert.Contains(t, got, "AC:  [0] 0000042")
}

func TestMemoryCommand(t *testing.T) {
	progPath := filepath.Join(t.TempDir(), "prog.asm")
	assert.NoError(t, os.WriteFile(progPath, []byte("_start 300\n4100012\n9999999\n"), 0o644))

	s, out := newTestShell(t, "load "+progPath+"\nmemory 300\nmemory -1\nexit\n")
	assert.NoError(t, s.Run())

	got := out.String()
	assert.Contains(t, got, "Mem[300] = 4100012")
	assert.Contains(t, got, "direccion invalida")
}

func TestLoadMissingFileReportsError(t *testing.T) {
	s, out := newTestShell(t, "load /no/such/file\nexit\n")
	assert.NoError(t, s.Run())
	assert.Contains(t, out.String(), "error:")
}
