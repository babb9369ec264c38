package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nofnotg/anamnesis/internal/model"
)

// Processor analyzes one document and returns its report. The pipeline
// runner satisfies this through a thin adapter in the CLI.
type Processor interface {
	ProcessDocument(ctx context.Context, path string) (*model.Report, error)
}

// AnalyzeJob is one document analysis job
type AnalyzeJob struct {
	Path      string
	Processor Processor
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Processor.ProcessDocument(ctx, j.Path)
	return &AnalyzeResult{Path: j.Path, Report: report, Error: err}
}

// AnalyzeResult is the outcome of one document analysis
type AnalyzeResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple documents concurrently, one task per
// document. Ordering across documents is not guaranteed.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes the given documents concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&AnalyzeJob{Path: path, Processor: b.processor})
	}

	results := pool.Wait()
	out := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		out[i] = result.(*AnalyzeResult)
	}
	return out
}

// ProcessInput accepts either a directory of documents or a list file of
// paths (one per line) and analyzes everything found.
func (b *BatchProcessor) ProcessInput(ctx context.Context, input string) ([]*AnalyzeResult, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	var paths []string
	if info.IsDir() {
		paths, err = CollectDocuments(input)
	} else {
		paths, err = ReadPathsFromFile(input)
	}
	if err != nil {
		return nil, err
	}
	return b.ProcessPaths(ctx, paths), nil
}

// CollectDocuments finds analyzable documents in a directory
func CollectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md", ".html", ".htm":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// ReadPathsFromFile reads document paths from a list file, one per line,
// skipping blanks and # comments, deduplicated.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
