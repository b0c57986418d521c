package decode

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valerio/go-capreplay/capreplay/timing"
)

// CaptureMagic is the first line of a capture file.
const CaptureMagic = "CAPREPLAY1"

// frameRecord is one captured frame: how many commands it issued and the
// total command cost in microseconds.
type frameRecord struct {
	commands int
	costUS   int64
}

// FileProcessor replays frames from a capture file. Each frame's command
// workload is dispatched to a background goroutine, so WaitIdle is what
// establishes an accurate boundary for timestamp sampling.
type FileProcessor struct {
	file    *os.File
	scanner *bufio.Scanner
	limiter timing.Limiter

	current  uint32
	commands uint64
	errState ErrorState

	wg sync.WaitGroup
}

var _ FrameProcessor = (*FileProcessor)(nil)

// Open opens a capture file and validates its header.
func Open(path string, limiter timing.Limiter) (*FileProcessor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != CaptureMagic {
		file.Close()
		return nil, fmt.Errorf("%s is not a capture file", path)
	}

	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	return &FileProcessor{
		file:    file,
		scanner: scanner,
		limiter: limiter,
	}, nil
}

// CurrentFrameNumber returns the number of frames replayed so far.
func (p *FileProcessor) CurrentFrameNumber() uint32 { return p.current }

// ErrorState reports the sticky failure state.
func (p *FileProcessor) ErrorState() ErrorState { return p.errState }

// ProcessNextFrame replays the next captured frame. Returns false at end of
// capture (without setting an error) or on failure.
func (p *FileProcessor) ProcessNextFrame() bool {
	if p.errState != ErrorNone {
		return false
	}

	rec, ok := p.nextRecord()
	if !ok {
		return false
	}

	p.limiter.WaitForNextFrame()

	p.wg.Add(1)
	go p.execute(rec)

	p.current++
	p.commands += uint64(rec.commands)

	return true
}

// CommandCount returns the total number of captured commands replayed.
func (p *FileProcessor) CommandCount() uint64 { return p.commands }

// WaitIdle blocks until all dispatched frame work has completed.
func (p *FileProcessor) WaitIdle() {
	p.wg.Wait()
}

// Close waits for outstanding work and releases the capture file.
func (p *FileProcessor) Close() error {
	p.WaitIdle()
	return p.file.Close()
}

// nextRecord scans forward to the next frame record, skipping blank lines
// and comments.
func (p *FileProcessor) nextRecord() (frameRecord, bool) {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseFrameRecord(line)
		if err != nil {
			slog.Error("Invalid frame record in capture", "frame", p.current+1, "error", err)
			p.errState = ErrorInvalidCapture
			return frameRecord{}, false
		}
		return rec, true
	}

	if err := p.scanner.Err(); err != nil {
		slog.Error("Failed to read capture", "error", err)
		p.errState = ErrorOccurred
	}

	return frameRecord{}, false
}

// execute simulates the frame's captured command workload.
func (p *FileProcessor) execute(rec frameRecord) {
	defer p.wg.Done()

	if rec.costUS > 0 {
		time.Sleep(time.Duration(rec.costUS) * time.Microsecond)
	}
}

func parseFrameRecord(line string) (frameRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return frameRecord{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	commands, err := strconv.Atoi(fields[0])
	if err != nil || commands < 0 {
		return frameRecord{}, fmt.Errorf("bad command count %q", fields[0])
	}

	costUS, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || costUS < 0 {
		return frameRecord{}, fmt.Errorf("bad frame cost %q", fields[1])
	}

	return frameRecord{commands: commands, costUS: costUS}, nil
}
