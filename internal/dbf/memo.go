package dbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingMemo is returned when a table has memo fields but no .dbt/.fpt file.
var ErrMissingMemo = errors.New("memo file not found")

type memoKind int

const (
	memoDB3 memoKind = iota
	memoDB4
	memoFPT
)

// memoFile holds a whole memo file in memory; the tables in scope are small.
type memoFile struct {
	path      string
	kind      memoKind
	data      []byte
	blockSize int
}

func findMemoFile(dbfPath string) (string, bool) {
	base := strings.TrimSuffix(dbfPath, filepath.Ext(dbfPath))
	for _, ext := range []string{".fpt", ".FPT", ".dbt", ".DBT"} {
		if st, err := os.Stat(base + ext); err == nil && !st.IsDir() {
			return base + ext, true
		}
	}
	return "", false
}

func openMemo(path string, version byte) (*memoFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read memo file: %w", err)
	}
	m := &memoFile{path: path, data: data, blockSize: 512}
	switch {
	case strings.EqualFold(filepath.Ext(path), ".fpt"):
		m.kind = memoFPT
		if len(data) >= 8 {
			if bs := int(binary.BigEndian.Uint16(data[6:8])); bs > 0 {
				m.blockSize = bs
			}
		}
	case version == 0x8B || version == 0x8E:
		m.kind = memoDB4
		if len(data) >= 22 {
			if bs := int(binary.LittleEndian.Uint16(data[20:22])); bs > 0 {
				m.blockSize = bs
			}
		}
	default:
		m.kind = memoDB3
	}
	return m, nil
}

// read returns the raw bytes stored at the given block index.
func (m *memoFile) read(index int) ([]byte, error) {
	off := index * m.blockSize
	if index <= 0 || off >= len(m.data) {
		return nil, fmt.Errorf("%s: memo block %d out of range", m.path, index)
	}
	block := m.data[off:]

	switch m.kind {
	case memoFPT:
		if len(block) < 8 {
			return nil, fmt.Errorf("%s: truncated memo block %d", m.path, index)
		}
		n := int(binary.BigEndian.Uint32(block[4:8]))
		if 8+n > len(block) {
			return nil, fmt.Errorf("%s: memo block %d overruns file", m.path, index)
		}
		return block[8 : 8+n], nil
	case memoDB4:
		if len(block) < 8 {
			return nil, fmt.Errorf("%s: truncated memo block %d", m.path, index)
		}
		n := int(binary.LittleEndian.Uint32(block[4:8])) - 8
		if n < 0 || 8+n > len(block) {
			return nil, fmt.Errorf("%s: memo block %d overruns file", m.path, index)
		}
		return block[8 : 8+n], nil
	default:
		if end := bytes.IndexByte(block, 0x1A); end >= 0 {
			return block[:end], nil
		}
		return block, nil
	}
}
