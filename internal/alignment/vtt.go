package alignment

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	vttTimestamp = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestamp = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&nbsp;", " ")
)

func parseVTT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var (
		current   *Entry
		textLines []string
		lineNum   int
		sawHeader bool
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = vttUnescaper.Replace(strings.Join(textLines, "\n"))
			entries = append(entries, *current)
		}
		current = nil
		textLines = nil
	}

	skipBlock := func() {
		for scanner.Scan() {
			lineNum++
			if strings.TrimSpace(scanner.Text()) == "" {
				return
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !sawHeader {
			if !strings.HasPrefix(trimmed, "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			sawHeader = true
			skipBlock()
			continue
		}

		if current == nil && (strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION")) {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := vttTimestamp.FindStringSubmatch(line); len(m) == 9 {
			flush()
			start, end, err := cueTimes(m[1:])
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{Start: start, End: end}
			continue
		}
		if m := vttShortTimestamp.FindStringSubmatch(line); len(m) == 7 {
			flush()
			start, end, err := cueTimes([]string{"00", m[1], m[2], m[3], "00", m[4], m[5], m[6]})
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{Start: start, End: end}
			continue
		}

		// cue identifiers precede the timing line and are dropped
		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("missing WEBVTT header")
	}
	return entries, nil
}
