package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

const (
	journalDir    = "events"
	journalPrefix = "events-"
	journalSuffix = ".jsonl.zst"
	// One journal file per UTC hour.
	hourLayout = "2006-01-02-15"
)

// Entry is one journal line: the event plus the wall-clock time it was written.
type Entry struct {
	Time string `json:"ts"`
	model.Event
}

// segment is the open journal file for one hour.
type segment struct {
	hour string
	f    *os.File
	zw   *zstd.Encoder
	buf  *bufio.Writer
	enc  *json.Encoder
}

func openSegment(dir, hour string) (*segment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(segmentPath(dir, hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	buf := bufio.NewWriterSize(zw, 64*1024)
	return &segment{hour: hour, f: f, zw: zw, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// append writes e as one line and flushes it into the zstd frame.
func (s *segment) append(e Entry) error {
	if err := s.enc.Encode(e); err != nil {
		return err
	}
	return s.buf.Flush()
}

func (s *segment) close() error {
	return errors.Join(s.buf.Flush(), s.zw.Close(), s.f.Close())
}

func segmentPath(dir, hour string) string {
	return filepath.Join(dir, journalPrefix+hour+journalSuffix)
}

// EventLogger journals session events under <sessionDir>/events. It is safe for concurrent use.
type EventLogger struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	cur     *segment
	written uint64
}

func NewEventLogger(sessionDir string) *EventLogger {
	return &EventLogger{dir: filepath.Join(sessionDir, journalDir), now: time.Now}
}

func (l *EventLogger) WriteEvent(ev model.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now().UTC()
	if hour := at.Format(hourLayout); l.cur == nil || l.cur.hour != hour {
		if err := l.closeLocked(); err != nil {
			return err
		}
		seg, err := openSegment(l.dir, hour)
		if err != nil {
			return fmt.Errorf("open journal %s: %w", hour, err)
		}
		l.cur = seg
	}
	if err := l.cur.append(Entry{Time: at.Format(time.RFC3339Nano), Event: ev}); err != nil {
		return err
	}
	l.written++
	return nil
}

// Written is the number of entries journaled since start.
func (l *EventLogger) Written() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

func (l *EventLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *EventLogger) closeLocked() error {
	if l.cur == nil {
		return nil
	}
	err := l.cur.close()
	l.cur = nil
	return err
}

// EventFiles lists the journal files under sessionDir in chronological order.
func EventFiles(sessionDir string) ([]string, error) {
	dir := filepath.Join(sessionDir, journalDir)
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, journalPrefix) || !strings.HasSuffix(name, journalSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// ReadEvents decodes one journal file, calling fn per entry until fn returns false.
func ReadEvents(path string, fn func(Entry) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if !fn(e) {
			return nil
		}
	}
	return sc.Err()
}
