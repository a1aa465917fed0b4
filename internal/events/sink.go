package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

// Sink delivers one encoded message to a topic.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewSink picks the destination from config: Kafka when enabled, otherwise
// the output destination (file or console).
func NewSink(cfg *models.Config) (Sink, error) {
	if cfg.Kafka.Enabled || cfg.Output.Destination == "kafka" {
		return NewSaramaProducer(cfg.Kafka)
	}
	switch cfg.Output.Destination {
	case "file":
		return NewJSONOutput(cfg.Output.Folder), nil
	case "", "console":
		return NewConsoleOutput(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.Output.Destination)
	}
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

// JSONOutput appends messages as JSON lines under
// folder/topic/year=YYYY/month=MM/day=DD/hour=HH/data.json, partitioned by
// the envelope timestamp.
type JSONOutput struct {
	mu     sync.Mutex
	folder string
	files  map[string]*os.File
}

func NewJSONOutput(folder string) *JSONOutput {
	return &JSONOutput{
		folder: folder,
		files:  make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	var head struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if head.Timestamp == 0 {
		return fmt.Errorf("invalid event: missing timestamp")
	}

	eventTime := time.Unix(head.Timestamp, 0).UTC()
	year, month, day := eventTime.Date()
	partitionPath := fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour())
	fullPath := filepath.Join(j.folder, topic, partitionPath)

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := topic + "_" + partitionPath
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var lastErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(j.files, key)
	}
	return lastErr
}
