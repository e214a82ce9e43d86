// Package session implements the Session Controller (spec.md §4.9): the
// init/process_chunk/finalize/cancel lifecycle that wires the Format
// Detector and Record Extractor into a Profile Builder.
package session

import (
	"strings"

	"dataprofile/domain/core"
	"dataprofile/domain/profile"
	"dataprofile/internal/config"
	"dataprofile/internal/detect"
	"dataprofile/internal/extract"
	"dataprofile/internal/log"
	"dataprofile/internal/profiler"
)

// State is the session's lifecycle stage.
type State string

const (
	StateReady     State = "ready"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// sniffWindow bounds how much of the stream the detector inspects before
// the session settles on an extractor (spec.md §4.2: "first N <= 64 KiB").
const sniffWindow = 64 * 1024

// Session owns one profiling run end to end. It is single-threaded
// cooperative (spec.md §5): ProcessChunk must not be called concurrently
// with itself or Finalize/Cancel on the same session.
type Session struct {
	ID       core.SessionID
	Filename string
	cfg      config.SessionConfig

	state State
	err   error

	detected  bool
	extractor extract.Extractor
	sniffBuf  []byte

	builder   *profiler.Builder
	bytesFed  uint64
	cancelled bool
	log       *log.Logger
}

// New creates a session in the Ready state. Configuration is validated
// up front per spec.md §4.9.
func New(filename string, cfg config.SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		ID:       core.NewSessionID(),
		Filename: filename,
		cfg:      cfg,
		state:    StateReady,
		builder:  profiler.NewBuilder(cfg),
		log:      log.Default.WithComponent("session"),
	}, nil
}

// State reports the session's current lifecycle stage.
func (s *Session) State() State { return s.state }

// ProcessChunk feeds one chunk of bytes (spec.md §4.9 process_chunk),
// returning an approximate progress percentage when size_limit_bytes was
// configured (0 when the total stream size is unknown).
func (s *Session) ProcessChunk(chunk []byte, atEOF bool) (float64, error) {
	if s.cancelled {
		return 0, core.ErrCancelled
	}
	if s.state == StateFailed {
		return 0, s.err
	}
	if s.state == StateDone {
		return 0, core.ErrSessionAlreadyClosed
	}

	s.bytesFed += uint64(len(chunk))
	s.log.Debug("chunk: %d bytes (total %d), eof=%v", len(chunk), s.bytesFed, atEOF)
	if s.cfg.SizeLimitBytes > 0 && s.bytesFed > s.cfg.SizeLimitBytes {
		return s.fail(core.ErrFileTooLarge)
	}

	if !s.detected {
		s.sniffBuf = append(s.sniffBuf, chunk...)
		if len(s.sniffBuf) < sniffWindow && !atEOF {
			return s.progress(), nil
		}
		if err := s.settleExtractor(); err != nil {
			return s.fail(err)
		}
		if err := s.drain(s.sniffBuf, atEOF); err != nil {
			return s.fail(err)
		}
		s.sniffBuf = nil
	} else {
		if err := s.drain(chunk, atEOF); err != nil {
			return s.fail(err)
		}
	}

	if atEOF {
		s.state = StateDone
	}
	return s.progress(), nil
}

// settleExtractor runs format detection over the sniff buffer and
// constructs the matching Record Extractor, honoring explicit config
// overrides before falling back to auto-detection (spec.md §4.9 init).
func (s *Session) settleExtractor() error {
	sample := s.sniffBuf
	if len(sample) > sniffWindow {
		sample = sample[:sniffWindow]
	}

	detected := detect.Detect(s.Filename, sample, s.cfg.HasHeader)
	format := detected.Format
	if s.cfg.Format != "" {
		format = s.cfg.Format
	}
	delimiter := detected.Delimiter
	if s.cfg.Delimiter != 0 {
		delimiter = s.cfg.Delimiter
	}
	hasHeader := detected.HasHeader
	switch s.cfg.HasHeader {
	case config.HeaderYes:
		hasHeader = true
	case config.HeaderNo:
		hasHeader = false
	}

	switch format {
	case config.FormatCSV:
		s.extractor = extract.NewCSVExtractor(delimiter, hasHeader)
	case config.FormatTSV:
		s.extractor = extract.NewCSVExtractor('\t', hasHeader)
	case config.FormatJSONArray:
		s.extractor = extract.NewJSONExtractor(extract.JSONArray)
	case config.FormatJSONLines:
		s.extractor = extract.NewJSONExtractor(extract.JSONLines)
	case config.FormatXLSX:
		s.extractor = extract.NewXLSXExtractor("", hasHeader)
	case config.FormatXLSLegacy:
		s.extractor = extract.NewLegacyXLSExtractor()
	case config.FormatAvro:
		s.extractor = extract.NewAvroExtractor()
	case config.FormatParquet:
		s.extractor = extract.NewParquetExtractor()
	default:
		return core.ErrUnsupportedFormat
	}

	s.detected = true
	return nil
}

// drain feeds bytes to the extractor and folds the resulting events into
// the profile builder, checking the cooperative-cancel flag between
// events (spec.md §5).
func (s *Session) drain(chunk []byte, atEOF bool) error {
	res, err := s.extractor.Feed(chunk, atEOF)
	if err != nil {
		return classifyExtractorError(err)
	}

	for _, ev := range res.Events {
		if s.cancelled {
			return core.ErrCancelled
		}
		s.builder.NoteRow(ev.RowIndex)
		s.builder.Observe(ev.Column, ev.RowIndex, ev.Value)
	}
	for _, rowErr := range res.RowErrors {
		s.log.Warn("row %d dropped: %s (encoding=%v)", rowErr.RowIndex, rowErr.Reason, rowErr.Encoding)
		s.builder.RecordRowError(rowErr.RowIndex, rowErr.Encoding)
	}
	return nil
}

// classifyExtractorError maps an extractor's descriptive error (which
// doesn't import domain/core) onto the taxonomy sentinels core.IsFatal/
// core.IsCounted and the CLI exit-code logic key off (spec.md §7). Errors
// extractors did not classify by prefix are treated as fatal malformed
// headers, the conservative default.
func classifyExtractorError(err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unsupported format"):
		return core.ErrUnsupportedFormat
	case strings.HasPrefix(msg, "malformed header"):
		return core.ErrMalformedHeader
	case strings.HasPrefix(msg, "malformed row"):
		return core.NewMalformedRowError(0, msg)
	case strings.HasPrefix(msg, "format:"):
		return err
	default:
		return core.ErrMalformedHeader
	}
}

func (s *Session) fail(err error) (float64, error) {
	s.state = StateFailed
	s.err = err
	return s.progress(), err
}

func (s *Session) progress() float64 {
	if s.cfg.SizeLimitBytes == 0 {
		return 0
	}
	pct := float64(s.bytesFed) / float64(s.cfg.SizeLimitBytes) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Finalize returns the frozen profile result (spec.md §4.9 finalize).
// Accumulators are left intact so diagnostics remain inspectable after
// finalize, matching the Profile Builder's non-mutating contract.
func (s *Session) Finalize() (profile.Result, error) {
	if s.cancelled || s.state == StateCancelled {
		return profile.Result{}, core.ErrSessionAlreadyClosed
	}
	if s.state == StateFailed {
		return s.builder.Finalize(), s.err
	}
	if s.state != StateDone {
		if err := s.drain(nil, true); err != nil {
			return s.builder.Finalize(), err
		}
		s.state = StateDone
	}
	return s.builder.Finalize(), nil
}

// Cancel implements cooperative cancellation (spec.md §4.9 cancel, §5):
// the flag is checked between events inside the next (or in-flight)
// ProcessChunk/drain call.
func (s *Session) Cancel() {
	s.cancelled = true
	s.state = StateCancelled
}

// Err returns the fatal error that moved the session to Failed, if any.
func (s *Session) Err() error { return s.err }
