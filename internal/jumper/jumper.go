// Package jumper implements the frecency-ranked directory index: the "j"
// command family. Ranking and decay follow §4.5 of the specification.
package jumper

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxTotal is the rank-sum threshold that triggers decay.
	DefaultMaxTotal = 100000
	// DefaultMinRank is the floor below which a non-kept record is purged.
	DefaultMinRank = 10

	baseVisitPoints = 100

	bonusBasenameMatch = 300
	bonusBookmark      = 500
	bonusPinned        = 1000
	bonusWorkspace     = 300
)

// Record is one jumper database entry.
type Record struct {
	Path       string
	Visits     uint64
	FirstVisit time.Time
	LastVisit  time.Time
	Keep       bool
}

// DB is the in-memory, persisted jumper database.
type DB struct {
	records map[string]*Record
	file    string

	MaxTotal int64
	MinRank  int64
	Purge    bool
}

// New returns an empty database bound to the given persistence file.
func New(file string) *DB {
	return &DB{
		records:  make(map[string]*Record),
		file:     file,
		MaxTotal: DefaultMaxTotal,
		MinRank:  DefaultMinRank,
	}
}

// Load reads the line-oriented jumper file: "visits:last_visit:first_visit:path",
// plus an optional "@N" rank-snapshot line, which is skipped on read (Save
// recomputes it from the records). If Purge is set, records whose path no
// longer exists on disk are dropped.
func Load(file string, purge bool) (*DB, error) {
	db := New(file)
	db.Purge = purge

	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		parts := strings.SplitN(line, ":", 4)
		if len(parts) != 4 {
			continue
		}
		visits, err1 := strconv.ParseUint(parts[0], 10, 64)
		lastUnix, err2 := strconv.ParseInt(parts[1], 10, 64)
		firstUnix, err3 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		path := parts[3]
		if purge {
			if _, statErr := os.Stat(path); statErr != nil {
				continue
			}
		}
		db.records[path] = &Record{
			Path:       path,
			Visits:     visits,
			LastVisit:  time.Unix(lastUnix, 0),
			FirstVisit: time.Unix(firstUnix, 0),
		}
	}
	return db, scanner.Err()
}

// Save rewrites the database file in full, plus a trailing "@N" rank-total
// snapshot line.
func (db *DB) Save() error {
	if db.file == "" {
		return nil
	}
	var sb strings.Builder
	var total int64
	for _, r := range db.records {
		fmt.Fprintf(&sb, "%d:%d:%d:%s\n", r.Visits, r.LastVisit.Unix(), r.FirstVisit.Unix(), r.Path)
		total += db.rankAt(r, r.LastVisit, rankContext{})
	}
	fmt.Fprintf(&sb, "@%d\n", total)
	return os.WriteFile(db.file, []byte(sb.String()), 0644)
}

// rankContext carries the query-time bonuses (§4.5) that don't live in the
// record itself.
type rankContext struct {
	query       string
	isBookmark  bool
	isPinned    bool
	inWorkspace bool
}

func (db *DB) rankAt(r *Record, now time.Time, ctx rankContext) int64 {
	base := int64(r.Visits) * baseVisitPoints
	ageHours := now.Sub(r.LastVisit).Hours()

	var rank int64
	switch {
	case ageHours <= 1:
		rank = base * 4
	case ageHours <= 24:
		rank = base * 2
	case ageHours <= 168:
		rank = base / 2
	default:
		rank = base / 4
	}

	if ctx.query != "" && strings.Contains(basename(r.Path), ctx.query) {
		rank += bonusBasenameMatch
	}
	if ctx.isBookmark {
		rank += bonusBookmark
	}
	if ctx.isPinned {
		rank += bonusPinned
	}
	if ctx.inWorkspace {
		rank += bonusWorkspace
	}
	return rank
}

func basename(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// Visit records a directory change, creating the record if new, bumping
// visits, and running decay if the total rank has crossed MaxTotal.
func (db *DB) Visit(path string, when time.Time) {
	r, ok := db.records[path]
	if !ok {
		r = &Record{Path: path, FirstVisit: when}
		db.records[path] = r
	}
	r.Visits++
	r.LastVisit = when
	db.decayIfNeeded(when)
}

// Pin marks path as kept, exempting it from rank-floor purges.
func (db *DB) Pin(path string) {
	if r, ok := db.records[path]; ok {
		r.Keep = true
	}
}

// Unpin clears the keep flag.
func (db *DB) Unpin(path string) {
	if r, ok := db.records[path]; ok {
		r.Keep = false
	}
}

// IsPinned reports whether path is marked kept, for the rank formula's
// pinned bonus and the purge exemption.
func (db *DB) IsPinned(path string) bool {
	r, ok := db.records[path]
	return ok && r.Keep
}

func (db *DB) decayIfNeeded(now time.Time) {
	var total int64
	for _, r := range db.records {
		total += db.rankAt(r, now, rankContext{})
	}
	if total < db.MaxTotal {
		return
	}
	for path, r := range db.records {
		// rank = visits*100*multiplier(age); scaling visits by 0.9
		// approximates scaling rank by 0.9, since the age-derived
		// multiplier is unaffected by decay. Visits round down, so a
		// record with a single visit decays to zero.
		r.Visits = uint64(float64(r.Visits) * 0.9)
		if db.rankAt(r, now, rankContext{}) < db.MinRank && !r.Keep {
			delete(db.records, path)
		}
	}
}

// Query returns the highest-rank record whose path contains every
// substring in needles, or nil if none match. bookmarks/pinned/workspace
// are lookup functions supplied by the caller so this package doesn't need
// to import the bookmarks/workspace packages.
func (db *DB) Query(needles []string, now time.Time, isBookmark, isPinned, inWorkspace func(string) bool) *Record {
	var best *Record
	var bestRank int64 = -1
	for _, r := range db.records {
		if !containsAll(r.Path, needles) {
			continue
		}
		ctx := rankContext{
			isBookmark:  isBookmark != nil && isBookmark(r.Path),
			isPinned:    isPinned != nil && isPinned(r.Path),
			inWorkspace: inWorkspace != nil && inWorkspace(r.Path),
		}
		if len(needles) > 0 {
			ctx.query = needles[len(needles)-1]
		}
		rank := db.rankAt(r, now, ctx)
		if rank > bestRank {
			bestRank = rank
			best = r
		}
	}
	return best
}

func containsAll(path string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(path, n) {
			return false
		}
	}
	return true
}

// List returns every record sorted by descending rank (for "j l").
func (db *DB) List(now time.Time) []*Record {
	out := make([]*Record, 0, len(db.records))
	for _, r := range db.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return db.rankAt(out[i], now, rankContext{}) > db.rankAt(out[j], now, rankContext{})
	})
	return out
}

// TotalRank sums the rank of every record at time now, used by the
// invariant test (sum of ranks bounded by MaxTotal * 1.1).
func (db *DB) TotalRank(now time.Time) int64 {
	var total int64
	for _, r := range db.records {
		total += db.rankAt(r, now, rankContext{})
	}
	return total
}
