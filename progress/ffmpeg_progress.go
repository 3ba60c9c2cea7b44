package progress

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cpunion/ytgrab/logger"
)

var (
	log = logger.Get("Progress")

	durationRegex = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+)\.(\d+)`)
)

// ParseFFmpegProgress consumes ffmpeg output until EOF. It understands both
// the banner printed on stderr (for the input duration) and the key=value
// lines written by `-progress pipe:1`.
func ParseFFmpegProgress(reader io.Reader, task *Task) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		if matches := durationRegex.FindStringSubmatch(line); matches != nil {
			// Only the first input's duration is relevant, the audio input
			// reports a near identical one.
			if _, total := task.Snapshot(); total == 0 {
				task.SetTotal(int64(parseDuration(matches[1:])))
			}
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "out_time_ms":
			// Despite the name, ffmpeg reports microseconds here.
			us, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				task.SetCurrent(int64(time.Duration(us) * time.Microsecond))
			}
		case "speed":
			task.SetSpeed(parseSpeed(value))
		case "progress":
			if value == "end" {
				task.Complete()
			}
		}
	}

	if err := scanner.Err(); err != nil {
		log.Emit(logger.WARNING, "Error reading ffmpeg output: %v\n", err)
	}
}

func parseDuration(fields []string) time.Duration {
	hours, _ := strconv.Atoi(fields[0])
	minutes, _ := strconv.Atoi(fields[1])
	seconds, _ := strconv.Atoi(fields[2])
	// Fractional part is in hundredths of a second ("00:03:25.47").
	frac, _ := strconv.Atoi(fields[3])
	scale := time.Second
	for i := 0; i < len(fields[3]); i++ {
		scale /= 10
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(frac)*scale
}

func parseSpeed(s string) float64 {
	s = strings.TrimSuffix(s, "x")
	speed, _ := strconv.ParseFloat(s, 64)
	return speed
}
