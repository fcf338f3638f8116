package save

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	fileExt    = ".sav"
	fileMagic  = "RTSV"
	fileHeader = 4 + 16 + 8 + 8
)

// FileStore keeps one file per slot under a base directory
// Writes go through a temp file and rename so a crash never leaves a torn slot
type FileStore struct {
	basePath string
}

// NewFileStore creates a store rooted at basePath
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// FilePath returns the path for a slot file
func (s *FileStore) FilePath(slot string) string {
	return filepath.Join(s.basePath, slot+fileExt)
}

// Exists checks if a slot file exists
func (s *FileStore) Exists(slot string) bool {
	_, err := os.Stat(s.FilePath(slot))
	return err == nil
}

// Save writes rec to the slot, replacing any previous content
func (s *FileStore) Save(ctx context.Context, slot string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return errSlotRequired
	}
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	id, err := parseID(rec.ID)
	if err != nil {
		return err
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	buf := make([]byte, 0, fileHeader+len(rec.Data))
	buf = append(buf, fileMagic...)
	buf = append(buf, id[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, rec.Tick)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(rec.SavedAt.UnixNano()))
	buf = append(buf, rec.Data...)

	tmp, err := os.CreateTemp(s.basePath, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmpName, s.FilePath(slot)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the slot's record
func (s *FileStore) Load(ctx context.Context, slot string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return Record{}, errSlotRequired
	}

	data, err := os.ReadFile(s.FilePath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read save: %w", err)
	}
	if len(data) < fileHeader || string(data[:4]) != fileMagic {
		return Record{}, fmt.Errorf("save: corrupt slot file %q", slot)
	}

	var id uuid.UUID
	copy(id[:], data[4:20])
	return Record{
		ID:      id.String(),
		Slot:    slot,
		Tick:    binary.LittleEndian.Uint64(data[20:28]),
		SavedAt: time.Unix(0, int64(binary.LittleEndian.Uint64(data[28:36]))),
		Data:    data[fileHeader:],
	}, nil
}

// parseID returns the record's id, minting a fresh one when it is empty
func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save: record id: %w", err)
	}
	return id, nil
}
