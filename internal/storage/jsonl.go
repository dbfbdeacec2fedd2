package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bondingCurve/internal/evmlog"
	"bondingCurve/internal/model"
)

// JsonlStorage writes events as EVM-style log records to a JSONL file.
type JsonlStorage struct {
	path    string
	encoder *evmlog.Encoder
	mu      sync.Mutex
}

func NewJsonlStorage(path string) (*JsonlStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonl path is required")
	}
	encoder, err := evmlog.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("load pool abi: %w", err)
	}
	return &JsonlStorage{path: path, encoder: encoder}, nil
}

// Publish appends a batch of records as JSON lines.
func (s *JsonlStorage) Publish(_ context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	logs := make([]model.LogRecord, 0, len(records))
	for _, rec := range records {
		log, err := s.encoder.Encode(rec)
		if err != nil {
			return err
		}
		logs = append(logs, log)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range logs {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal log record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write log record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// ReadJsonl decodes every log line in path back into event records.
func ReadJsonl(path string) ([]model.EventRecord, error) {
	decoder, err := evmlog.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("load pool abi: %w", err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()

	var out []model.EventRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var log model.LogRecord
		if err := json.Unmarshal(scanner.Bytes(), &log); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := decoder.Decode(log)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return out, nil
}
