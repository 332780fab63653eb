package alignment

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimestamp = regexp.MustCompile(
	`(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`,
)

func parseSRT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var (
		current   *Entry
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			entries = append(entries, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			// cue index line, optional in sloppy files
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
			matches := srtTimestamp.FindStringSubmatch(line)
			if len(matches) != 9 {
				return nil, fmt.Errorf("expected timestamp at line %d: %q", lineNum, line)
			}
			start, end, err := cueTimes(matches[1:])
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{Start: start, End: end}
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}
	return entries, nil
}

// converts eight hh mm ss ms captures into start and end seconds
func cueTimes(parts []string) (float64, float64, error) {
	start, err := clockTime(parts[0], parts[1], parts[2], parts[3])
	if err != nil {
		return 0, 0, err
	}
	end, err := clockTime(parts[4], parts[5], parts[6], parts[7])
	if err != nil {
		return 0, 0, err
	}
	return start.Seconds(), end.Seconds(), nil
}

func clockTime(hours, minutes, seconds, millis string) (time.Duration, error) {
	var fields [4]int
	for i, s := range []string{hours, minutes, seconds, millis} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		fields[i] = n
	}
	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*time.Millisecond, nil
}
