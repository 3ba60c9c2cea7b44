package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
)

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled toggles rendering of progress bars for tasks created
// afterwards. Disabled tasks still track their counters.
func SetEnabled(on bool) {
	enabled.Store(on)
}

func Enabled() bool {
	return enabled.Load()
}

type Task struct {
	Name        string
	Total       int64
	Current     int64
	Bar         *pb.ProgressBar
	IsMergeTask bool

	mu sync.Mutex
}

func NewTask(name string, total int64, isMergeTask bool) *Task {
	task := &Task{
		Name:        name,
		Total:       total,
		IsMergeTask: isMergeTask,
	}
	if !Enabled() {
		return task
	}

	bar := pb.New64(total).Set("prefix", name).SetRefreshRate(time.Millisecond * 100)
	if isMergeTask {
		// Merge task progress bar format: task name: percentage progress, progress bar, (ffmpeg processed time/total time), task remaining time
		bar.SetTemplateString(`{{with string . "prefix"}}{{.}}{{end}}: {{percent . }} {{bar . }} {{string . "counters" }} [{{string . "speed"}}] {{rtime . "ETA %s"}}{{with string . "suffix"}} {{.}}{{end}}`)
	} else {
		// Download task progress bar format: task name: percentage progress, progress bar, (downloaded bytes/total bytes), task remaining time
		bar.Set(pb.Bytes, true)
		bar.SetTemplateString(`{{with string . "prefix"}}{{.}}{{end}}: {{percent . }} {{bar . }} {{counters . }} [{{speed . }}] {{rtime . "ETA %s"}}{{with string . "suffix"}} {{.}}{{end}}`)
	}

	if err := bar.Err(); err != nil {
		// Broken template: track counters without a bar.
		return task
	}

	bar.Start()
	task.Bar = bar
	return task
}

func (t *Task) Reader(r io.Reader) io.Reader {
	if t.Bar == nil {
		return &countingReader{r: r, task: t}
	}
	return t.Bar.NewProxyReader(r)
}

func (t *Task) SetCurrent(current int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Total > 0 && current > t.Total {
		current = t.Total
	}
	t.Current = current
	if t.Bar == nil {
		return
	}
	t.Bar.SetCurrent(current)
	if t.IsMergeTask {
		counters := fmt.Sprintf("%s/%s", formatDuration(time.Duration(t.Current)), formatDuration(time.Duration(t.Total)))
		t.Bar.Set("counters", counters)
	}
}

func (t *Task) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Total = total
	if t.Bar != nil {
		t.Bar.SetTotal(total)
	}
}

// Complete marks the task as fully done, e.g. when ffmpeg reports progress=end.
func (t *Task) Complete() {
	t.mu.Lock()
	total := t.Total
	t.mu.Unlock()
	t.SetCurrent(total)
}

func (t *Task) SetSpeed(speed float64) {
	if t.IsMergeTask && t.Bar != nil {
		t.Bar.Set("speed", fmt.Sprintf("%.2fx", speed))
	}
}

func (t *Task) Snapshot() (current, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Current, t.Total
}

func (t *Task) Finish() {
	if t.Bar != nil {
		t.Bar.Finish()
	}
}

type countingReader struct {
	r    io.Reader
	task *Task
	n    int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	c.task.mu.Lock()
	c.task.Current = c.n
	c.task.mu.Unlock()
	return n, err
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh:%dm:%ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm:%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
