package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"chessgame/internal/domain/game"
	errs "chessgame/internal/errors"
)

const gameFileExt = ".json"

// FileGameRepository stores one JSON document per game in dir.
type FileGameRepository struct {
	dir string
	log *zap.SugaredLogger
	mu  sync.RWMutex
}

func NewFileGameRepository(dir string, log *zap.SugaredLogger) (*FileGameRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir %s: %w", dir, err)
	}
	return &FileGameRepository{dir: dir, log: log}, nil
}

func (f *FileGameRepository) path(id string) string {
	return filepath.Join(f.dir, id+gameFileExt)
}

// validID keeps ids from escaping the save directory.
func validID(id string) bool {
	return id != "" && id == filepath.Base(id) && id != "." && id != ".."
}

func (f *FileGameRepository) Save(_ context.Context, g game.Game) (string, error) {
	prepareForSave(&g)
	if !validID(g.ID) {
		return "", fmt.Errorf("invalid game id %q", g.ID)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", g.ID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, g.ID+".*.tmp")
	if err != nil {
		f.log.Errorf("failed to create temp file for game %s: %v", g.ID, err)
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		f.log.Errorf("failed to write game %s: %v", g.ID, err)
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Rename(tmp.Name(), f.path(g.ID)); err != nil {
		f.log.Errorf("failed to move game %s into place: %v", g.ID, err)
		return "", err
	}
	return g.ID, nil
}

func (f *FileGameRepository) FindByID(_ context.Context, id string) (game.Game, error) {
	if !validID(id) {
		return game.Game{}, errs.ErrGameNotFound
	}

	f.mu.RLock()
	data, err := os.ReadFile(f.path(id))
	f.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		f.log.Errorf("failed to read game %s: %v", id, err)
		return game.Game{}, err
	}

	var g game.Game
	if err = json.Unmarshal(data, &g); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return g, nil
}

func (f *FileGameRepository) ListGameIDs(_ context.Context) ([]string, error) {
	f.mu.RLock()
	matches, err := filepath.Glob(filepath.Join(f.dir, "*"+gameFileExt))
	f.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), gameFileExt))
	}
	sort.Strings(ids)
	return ids, nil
}
