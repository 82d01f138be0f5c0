package fsplit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"
)

const undoDir = "~/.local/state/nvim/undo/"

// NvimFileSystem writes through Neovim buffers so every write lands in the
// buffer's undo history. Reads and deletions go to disk.
type NvimFileSystem struct {
	OSFileSystem
	v             *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

func NewNvimFileSystem() (*NvimFileSystem, error) {
	if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" {
		v, err := nvim.Dial(addr)
		if err == nil {
			return &NvimFileSystem{v: v}, nil
		}
	}

	tmpDir, err := os.MkdirTemp("", "fsplit-nvim-")
	if err != nil {
		return nil, err
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start nvim: %w", err)
	}

	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(tmpDir)
		return nil, err
	}

	fsys := &NvimFileSystem{v: v, isSelfStarted: true, cmd: cmd, socketPath: socketPath}
	fsys.configureTempInstance()
	return fsys, nil
}

func (f *NvimFileSystem) configureTempInstance() {
	home, _ := os.UserHomeDir()
	expandedUndoDir := strings.Replace(undoDir, "~", home, 1)
	os.MkdirAll(expandedUndoDir, 0755)

	b := f.v.NewBatch()
	b.Command("set undofile")
	b.Command(fmt.Sprintf("set undodir=%s", expandedUndoDir))
	b.Command("set noswapfile")
	b.Execute()
}

func (f *NvimFileSystem) Close() {
	if f.v != nil {
		f.v.Close()
	}
	if f.isSelfStarted && f.cmd != nil && f.cmd.Process != nil {
		f.cmd.Process.Kill()
		f.cmd.Wait()
		os.RemoveAll(filepath.Dir(f.socketPath))
	}
}

func (f *NvimFileSystem) WriteFile(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return err
	}

	text := string(data)
	bom := strings.HasPrefix(text, utf8BOM)
	text = strings.TrimPrefix(text, utf8BOM)
	crlf := strings.Contains(text, "\r\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	byteContent := make([][]byte, len(lines))
	for i, s := range lines {
		byteContent[i] = []byte(s)
	}

	b := f.v.NewBatch()
	b.Command(fmt.Sprintf("edit! %s", escapePath(absPath)))
	b.SetBufferLines(0, 0, -1, true, byteContent)
	if crlf {
		b.Command("setlocal fileformat=dos")
	} else {
		b.Command("setlocal fileformat=unix")
	}
	if bom {
		b.Command("setlocal bomb")
	} else {
		b.Command("setlocal nobomb")
	}
	b.Command("write!")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("nvim write %s: %w", path, err)
	}
	return nil
}

func (f *NvimFileSystem) Remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// drop a loaded buffer so a later write does not resurrect the file
	_ = f.v.Command(fmt.Sprintf("silent! bwipeout! %s", escapePath(absPath)))
	return os.Remove(absPath)
}

func escapePath(p string) string {
	return strings.NewReplacer(" ", `\ `, "%", `\%`, "#", `\#`).Replace(p)
}
