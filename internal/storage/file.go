package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/yourname/aidiary/internal"
)

type FileStorage struct {
	fs         afero.Fs
	diaries    map[string]*internal.Diary   // id -> Diary
	userIndex  map[string][]*internal.Diary // userID -> Diaries sorted by date descending
	mu         sync.RWMutex
	diaryFile  string
	saveChan   chan struct{}
	shutdown   chan struct{}
	workerDone chan struct{}
	saveDelay  time.Duration
	now        func() time.Time
	logger     internal.Logger
}

type FileOption func(*FileStorage)

// WithSaveDelay sets how long the save worker waits for further writes.
func WithSaveDelay(d time.Duration) FileOption {
	return func(s *FileStorage) { s.saveDelay = d }
}

func NewFileStorage(fs afero.Fs, diaryFile string, logger internal.Logger, opts ...FileOption) (*FileStorage, error) {
	s := &FileStorage{
		fs:         fs,
		diaries:    make(map[string]*internal.Diary),
		userIndex:  make(map[string][]*internal.Diary),
		diaryFile:  diaryFile,
		saveChan:   make(chan struct{}, 1),
		shutdown:   make(chan struct{}),
		workerDone: make(chan struct{}),
		saveDelay:  500 * time.Millisecond,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load diaries: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) load() error {
	file, err := s.fs.Open(s.diaryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var diaries []*internal.Diary
	if err := json.NewDecoder(file).Decode(&diaries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range diaries {
		s.diaries[d.ID] = d
		s.userIndex[d.UserID] = append(s.userIndex[d.UserID], d)
	}
	for userID := range s.userIndex {
		sortByDateDesc(s.userIndex[userID])
	}
	return nil
}

// sortByDateDesc orders by calendar date, then creation time, newest first.
// YYYY-MM-DD strings compare correctly as text.
func sortByDateDesc(diaries []*internal.Diary) {
	sort.SliceStable(diaries, func(i, j int) bool {
		if diaries[i].Date != diaries[j].Date {
			return diaries[i].Date > diaries[j].Date
		}
		return diaries[i].CreatedAt.After(diaries[j].CreatedAt)
	})
}

func atomicWriteFileJSON(fs afero.Fs, filePath string, data interface{}) error {
	dir := filepath.Dir(filePath)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	f, err := afero.TempFile(fs, dir, ".diaries-*.tmp")
	if err != nil {
		return err
	}
	tempFile := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		fs.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		fs.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		fs.Remove(tempFile)
		return err
	}

	return fs.Rename(tempFile, filePath)
}

func (s *FileStorage) save() error {
	s.mu.RLock()
	diaries := make([]internal.Diary, 0, len(s.diaries))
	for _, d := range s.diaries {
		diaries = append(diaries, *d)
	}
	s.mu.RUnlock()

	sort.Slice(diaries, func(i, j int) bool { return diaries[i].ID < diaries[j].ID })
	return atomicWriteFileJSON(s.fs, s.diaryFile, diaries)
}

// saveWorker batches writes so a burst of edits produces one disk write.
func (s *FileStorage) saveWorker() {
	defer close(s.workerDone)

	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving diaries: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func (s *FileStorage) signalSave() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// Close stops the worker and writes pending changes synchronously.
func (s *FileStorage) Close() error {
	close(s.shutdown)
	<-s.workerDone
	return s.save()
}

// --- DiaryRepository ---
func (s *FileStorage) CreateDiary(ctx context.Context, diary *internal.Diary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.diaries[diary.ID]; exists {
		return fmt.Errorf("storage: diary %s already exists", diary.ID)
	}
	stored := *diary
	s.diaries[diary.ID] = &stored
	s.userIndex[diary.UserID] = append(s.userIndex[diary.UserID], &stored)
	sortByDateDesc(s.userIndex[diary.UserID])
	s.signalSave()
	return nil
}

// lookup must be called with s.mu held.
func (s *FileStorage) lookup(userID, id string) (*internal.Diary, error) {
	d, ok := s.diaries[id]
	if !ok || d.UserID != userID {
		return nil, internal.ErrNotFound
	}
	return d, nil
}

func (s *FileStorage) GetDiary(ctx context.Context, userID, id string) (*internal.Diary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	out := *d
	return &out, nil
}

func (s *FileStorage) ListDiaries(ctx context.Context, userID string) ([]internal.Diary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ptrs := s.userIndex[userID]
	diaries := make([]internal.Diary, len(ptrs))
	for i, d := range ptrs {
		diaries[i] = *d
	}
	return diaries, nil
}

func (s *FileStorage) UpdateDiary(ctx context.Context, userID, id, content string, userInput *string) (*internal.Diary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	d.Content = content
	if userInput != nil {
		d.UserInput = *userInput
	}
	d.UpdatedAt = s.now().UTC()
	s.signalSave()
	out := *d
	return &out, nil
}

func (s *FileStorage) DeleteDiary(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(userID, id); err != nil {
		return err
	}
	delete(s.diaries, id)
	list := s.userIndex[userID]
	for i, d := range list {
		if d.ID == id {
			s.userIndex[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.userIndex[userID]) == 0 {
		delete(s.userIndex, userID)
	}
	s.signalSave()
	return nil
}

// --- Compile-time assertions ---
var _ DiaryRepository = (*FileStorage)(nil)
