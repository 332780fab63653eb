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

var assOverrideTags = regexp.MustCompile(`\{[^}]*\}`)

// reads the Dialogue lines of an ASS/SSA script, dropping override tags
func parseASS(r io.Reader) ([]Entry, error) {
	var (
		entries  []Entry
		columns  []string
		inEvents bool
		lineNum  int
	)
	startIdx, endIdx, textIdx := -1, -1, -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(strings.Trim(trimmed, "[]"))
			inEvents = section == "events"
			continue
		}
		if !inEvents {
			continue
		}

		if format, ok := strings.CutPrefix(trimmed, "Format:"); ok {
			columns = strings.Split(format, ",")
			for i, col := range columns {
				switch strings.ToLower(strings.TrimSpace(col)) {
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				case "text":
					textIdx = i
				}
			}
			if startIdx < 0 || endIdx < 0 || textIdx < 0 {
				return nil, fmt.Errorf("ASS Format line at %d lacks Start, End or Text", lineNum)
			}
			continue
		}

		content, ok := strings.CutPrefix(trimmed, "Dialogue:")
		if !ok {
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf("Dialogue before Format line at line %d", lineNum)
		}

		// text is the last column and may itself contain commas
		fields := strings.SplitN(strings.TrimSpace(content), ",", len(columns))
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("expected %d fields at line %d, got %d", len(columns), lineNum, len(fields))
		}

		start, err := assTimestamp(fields[startIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid start at line %d: %w", lineNum, err)
		}
		end, err := assTimestamp(fields[endIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid end at line %d: %w", lineNum, err)
		}

		text := assOverrideTags.ReplaceAllString(fields[textIdx], "")
		text = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ").Replace(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		entries = append(entries, Entry{Start: start.Seconds(), End: end.Seconds(), Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS: %w", err)
	}
	if columns == nil {
		return nil, fmt.Errorf("ASS script has no [Events] Format line")
	}
	return entries, nil
}

// h:mm:ss.cc
func assTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	secs, centis, ok := strings.Cut(parts[2], ".")
	if !ok {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	var fields [4]int
	for i, s := range []string{parts[0], parts[1], secs, centis} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", ts)
		}
		fields[i] = n
	}
	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*10*time.Millisecond, nil
}
