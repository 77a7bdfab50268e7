package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RunContext holds information about one saved planning run
type RunContext struct {
	ID        string    // Short unique identifier (8 chars)
	Timestamp time.Time // When the run started
	Dir       string    // Full path to the run directory
}

// New creates a new run context and initializes the run directory under base
func New(base string) (*RunContext, error) {
	now := time.Now()
	shortID := uuid.New().String()[:8]

	// Format: <base>/2025-01-15_143052_a1b2c3d4/
	dirName := fmt.Sprintf("%s_%s", now.Format("2006-01-02_150405"), shortID)
	runDir := filepath.Join(base, dirName)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	return &RunContext{
		ID:        shortID,
		Timestamp: now,
		Dir:       runDir,
	}, nil
}

// Path returns the full path for a file of the run
func (r *RunContext) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Create creates a file in the run directory and returns the file handle
func (r *RunContext) Create(name string) (*os.File, error) {
	return os.Create(r.Path(name))
}

// Write writes content to a file of the run
func (r *RunContext) Write(name string, content []byte) error {
	return os.WriteFile(r.Path(name), content, 0644)
}

// RunInfo contains information about a stored run
type RunInfo struct {
	Name      string    `json:"name"`
	Dir       string    `json:"dir"`
	Timestamp time.Time `json:"timestamp"`
	Files     []File    `json:"files"`
}

// File represents one saved plan in a run directory
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ListRuns returns all run directories under base sorted by most recent first
func ListRuns(base string) ([]RunInfo, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunInfo{}, nil
		}
		return nil, err
	}

	// Directory names start with the timestamp, so name order is time order.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() > entries[j].Name() })

	runs := []RunInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		runDir := filepath.Join(base, entry.Name())
		files, _ := listFiles(runDir)

		runs = append(runs, RunInfo{
			Name:      entry.Name(),
			Dir:       runDir,
			Timestamp: info.ModTime(),
			Files:     files,
		})
	}

	return runs, nil
}

func listFiles(runDir string) ([]File, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, File{
			Name: entry.Name(),
			Path: filepath.Join(runDir, entry.Name()),
			Size: info.Size(),
		})
	}

	return files, nil
}
