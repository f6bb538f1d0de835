package log

import (
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// maxFileMB caps a single day's file; lumberjack moves the full file aside
// with a timestamp suffix and starts a fresh one under the same name.
const maxFileMB = 100

// dailyFile writes to dir/FileName(now()) and moves on to a new file the
// first time it is written to on a new day.
type dailyFile struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	name string
	out  *lumberjack.Logger
}

func newDailyFile(dir string, now func() time.Time) *dailyFile {
	return &dailyFile{dir: dir, now: now}
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name := FileName(d.now()); d.out == nil || name != d.name {
		if d.out != nil {
			if err := d.out.Close(); err != nil {
				return 0, err
			}
		}
		d.name = name
		d.out = &lumberjack.Logger{
			Filename:  filepath.Join(d.dir, name),
			MaxSize:   maxFileMB,
			LocalTime: true,
		}
	}
	return d.out.Write(p)
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.out == nil {
		return nil
	}
	return d.out.Close()
}
