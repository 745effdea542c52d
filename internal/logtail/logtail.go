package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// of zero or less returns the whole file. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// LineLevel extracts the level=... field of a logfmt line.
func LineLevel(line string) (logrus.Level, bool) {
	i := strings.Index(line, "level=")
	if i < 0 {
		return 0, false
	}
	rest := line[i+len("level="):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	level, err := logrus.ParseLevel(strings.Trim(rest, `"`))
	if err != nil {
		return 0, false
	}
	return level, true
}

// Filter keeps lines at min severity or above. Lines without a level field
// are kept only when they follow a kept line.
func Filter(lines []string, min logrus.Level) []string {
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if level, ok := LineLevel(line); ok {
			// logrus orders levels from most to least severe.
			keep = level <= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

// Tail reads the last maxLines entries at min severity or above.
func Tail(path string, maxLines int, min logrus.Level) ([]string, error) {
	lines, err := Read(path, 0)
	if err != nil {
		return nil, err
	}
	lines = Filter(lines, min)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}
