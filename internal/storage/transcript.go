package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const maxEntries = 500

// Entry is one chat line seen or sent by the bot.
type Entry struct {
	Time    time.Time
	Channel string
	Nick    string
	Text    string
}

// Transcript appends chat lines to one file per network in Dir.
type Transcript struct {
	Dir string
}

// NewTranscript creates dir if needed.
func NewTranscript(dir string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &Transcript{Dir: dir}, nil
}

// Append writes one entry to the network's transcript
func (t *Transcript) Append(network string, e Entry) error {
	file, err := os.OpenFile(t.path(network), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(file, formatEntry(e)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load returns the last n entries of the network's transcript, oldest first.
// n <= 0 means the default of 500. A missing transcript is empty.
func (t *Transcript) Load(network string, n int) ([]Entry, error) {
	if n <= 0 {
		n = maxEntries
	}
	lines, err := tailLines(t.path(network), n)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		e, err := parseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (t *Transcript) path(network string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, network)
	if name == "" || name == "." || name == ".." {
		name = "default"
	}
	return filepath.Join(t.Dir, name+".log")
}

// Entries are stored as tab separated fields: time, channel, nick, text.
func formatEntry(e Entry) string {
	return strings.Join([]string{
		e.Time.UTC().Format(time.RFC3339),
		flatten(e.Channel),
		flatten(e.Nick),
		flatten(e.Text),
	}, "\t")
}

func parseEntry(line string) (Entry, error) {
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) != 4 {
		return Entry{}, errors.New("malformed transcript line")
	}
	ts, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return Entry{}, err
	}
	return Entry{Time: ts, Channel: parts[1], Nick: parts[2], Text: parts[3]}, nil
}

func flatten(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
}

// tailLines returns the last n non-empty lines of the file at path.
func tailLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ring := make([]string, 0, n)
	next := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return slices.Concat(ring[next:], ring[:next]), nil
}
