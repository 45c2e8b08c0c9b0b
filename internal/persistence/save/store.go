package save

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Store persists saves by slot.
type Store interface {
	Save(ctx context.Context, s SaveV3) error
	Load(ctx context.Context, slot string) (SaveV3, error)
}

const fileSuffix = ".save.zst"

// FileStore keeps one zstd-compressed file per slot: a JSON header line followed by the JSON body.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (st *FileStore) Path(slot string) string {
	return filepath.Join(st.Dir, slot+fileSuffix)
}

func (st *FileStore) Save(ctx context.Context, s SaveV3) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validSlot(s.Header.Slot); err != nil {
		return err
	}
	if err := os.MkdirAll(st.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(st.Dir, s.Header.Slot+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(tmp, s); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, st.Path(s.Header.Slot))
}

func (st *FileStore) Load(ctx context.Context, slot string) (SaveV3, error) {
	if err := ctx.Err(); err != nil {
		return SaveV3{}, err
	}
	if err := validSlot(slot); err != nil {
		return SaveV3{}, err
	}
	f, err := os.Open(st.Path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return SaveV3{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return SaveV3{}, err
	}
	defer f.Close()
	return Read(f)
}

// Slots lists the slots present in the directory, sorted.
func (st *FileStore) Slots() ([]string, error) {
	ents, err := os.ReadDir(st.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), fileSuffix))
	}
	sort.Strings(out)
	return out, nil
}

// Write encodes s to w as header line + body, zstd compressed.
func Write(w io.Writer, s SaveV3) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	s.Header.Version = CurrentVersion
	hb, _ := json.Marshal(s.Header)
	body, err := Marshal(s)
	if err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode body: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(body); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a stream produced by Write at any supported version.
func Read(r io.Reader) (SaveV3, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return SaveV3{}, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return SaveV3{}, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return SaveV3{}, fmt.Errorf("decode header: %w", err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return SaveV3{}, fmt.Errorf("read body: %w", err)
	}
	s, err := Unmarshal(h.Version, body)
	if err != nil {
		return SaveV3{}, err
	}
	if s.Header.Slot == "" {
		s.Header.Slot = h.Slot
	}
	return s, nil
}

func validSlot(slot string) error {
	if slot == "" || strings.ContainsAny(slot, `/\.`) {
		return fmt.Errorf("invalid save slot %q", slot)
	}
	return nil
}
