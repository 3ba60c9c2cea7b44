// Package fetchtest provides in-memory stand-ins for the external tools
// used by fetch.Service.
package fetchtest

import (
	"context"
	"os"
	"sync"

	"github.com/cpunion/ytgrab/extractor"
	"github.com/cpunion/ytgrab/media"
)

// Extractor writes fixed payloads instead of downloading streams.
type Extractor struct {
	Result   extractor.Info
	InfoErr  error
	VideoErr error
	AudioErr error

	mu    sync.Mutex
	calls []string
}

func (e *Extractor) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

// Calls lists the operations invoked so far, as "info:<url>",
// "video:<dst>" or "audio:<dst>".
func (e *Extractor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *Extractor) Info(_ context.Context, url string) (*extractor.Info, error) {
	e.record("info:" + url)
	if e.InfoErr != nil {
		return nil, e.InfoErr
	}
	info := e.Result
	return &info, nil
}

func (e *Extractor) DownloadVideo(_ context.Context, _ string, dst string) error {
	e.record("video:" + dst)
	if e.VideoErr != nil {
		return e.VideoErr
	}
	return os.WriteFile(dst, []byte("video"), 0o644)
}

func (e *Extractor) DownloadAudio(_ context.Context, _ string, dst string) error {
	e.record("audio:" + dst)
	if e.AudioErr != nil {
		return e.AudioErr
	}
	return os.WriteFile(dst, []byte("audio"), 0o644)
}

// Merger concatenates both inputs into the output file.
type Merger struct {
	Err error

	mu   sync.Mutex
	jobs []media.MergeJob
}

func (m *Merger) Jobs() []media.MergeJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]media.MergeJob(nil), m.jobs...)
}

func (m *Merger) Merge(_ context.Context, job media.MergeJob) error {
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	video, err := os.ReadFile(job.Video)
	if err != nil {
		return err
	}
	audio, err := os.ReadFile(job.Audio)
	if err != nil {
		return err
	}
	return os.WriteFile(job.Output, append(video, audio...), 0o644)
}
