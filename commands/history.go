package commands

// HistoryLimit is how many submitted lines are remembered.
const HistoryLimit = 32

type Direction int

const (
	Older Direction = 1
	Newer Direction = -1
)

const notBrowsing = -1

// History remembers submitted lines, newest first, and lets the user walk
// through them without losing the line being typed.
type History struct {
	lines  []string
	cursor int
	stash  string
}

func NewHistory() *History {
	return &History{cursor: notBrowsing}
}

// Push records a submitted line, forgetting the oldest beyond HistoryLimit.
// It does not touch the cursor or the stash.
func (h *History) Push(line string) {
	h.lines = append([]string{line}, h.lines...)
	if len(h.lines) > HistoryLimit {
		h.lines = h.lines[:HistoryLimit]
	}
}

// Navigate moves the cursor and returns what the input should now show.
// current is the content of the input, stashed on the first move.
// Moving newer than the most recent entry restores the stash. Moving newer
// while not browsing keeps current as it is.
func (h *History) Navigate(dir Direction, current string) string {
	if len(h.lines) == 0 || (h.cursor == notBrowsing && dir == Newer) {
		return current
	}
	index := min(h.cursor+int(dir), len(h.lines))
	if index < 0 {
		h.cursor = notBrowsing
		return h.stash
	}
	if h.cursor == notBrowsing {
		h.stash = current
	}
	h.cursor = index
	if index < len(h.lines) {
		return h.lines[index]
	}
	return current
}

// Reset ends browsing once a line has been submitted.
func (h *History) Reset() {
	h.cursor = notBrowsing
	h.stash = ""
}

func (h *History) Cursor() int {
	return h.cursor
}

// Lines returns the remembered lines, newest first.
func (h *History) Lines() []string {
	return append([]string(nil), h.lines...)
}
