package text

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// SoftHyphen marks a hyphenation opportunity inside a word.
const SoftHyphen = "\u00ad"

// no hyphen closer than this to either end of a word
const (
	leftMin  = 2
	rightMin = 2
)

// Some languages only have dictionaries under a more specific name.
var langMap = map[string]string{
	"de":    "de-1901",
	"de-de": "de-1901",
	"de-at": "de-1996",
	"de-ch": "de-ch-1901",
	"el":    "el-monoton",
	"el-gr": "el-monoton",
	"en":    "en-us",
	"mn":    "mn-cyrl",
	"sh":    "sh-latn",
	"sr":    "sr-cyrl",
	"zh":    "zh-latn-pinyin",
}

// Hyphenator applies TeX hyphenation patterns of one language.
type Hyphenator struct {
	language   string
	patterns   *patternTrie
	exceptions map[string][]int
}

// NewHyphenator reads patterns and exceptions in the format of the TeX
// hyph-utf8 project: one pattern per line, exceptions spelled with
// hyphens. exceptions may be nil.
func NewHyphenator(name string, patterns, exceptions io.Reader) (*Hyphenator, error) {
	h := &Hyphenator{language: name, patterns: newPatternTrie(), exceptions: make(map[string][]int)}
	sc := bufio.NewScanner(patterns)
	for sc.Scan() {
		for _, p := range strings.Fields(sc.Text()) {
			h.patterns.addPattern(p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s patterns: %w", name, err)
	}
	if h.patterns.size() == 0 {
		return nil, fmt.Errorf("no %s patterns", name)
	}
	if exceptions == nil {
		return h, nil
	}
	sc = bufio.NewScanner(exceptions)
	for sc.Scan() {
		for _, word := range strings.Fields(sc.Text()) {
			var (
				points []int
				n      int
			)
			for _, r := range word {
				if r == '-' {
					points = append(points, n)
					continue
				}
				n++
			}
			h.exceptions[strings.ToLower(strings.ReplaceAll(word, "-", ""))] = points
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s exceptions: %w", name, err)
	}
	return h, nil
}

// Language returns the dictionary name.
func (h *Hyphenator) Language() string { return h.language }

// Points returns the rune offsets in word before which a hyphen may be
// inserted.
func (h *Hyphenator) Points(word string) []int {
	lower := make([]rune, 0, len(word)+2)
	lower = append(lower, '.')
	for _, r := range word {
		lower = append(lower, unicode.ToLower(r))
	}
	lower = append(lower, '.')
	n := len(lower) - 2
	if n < leftMin+rightMin {
		return nil
	}
	if points, ok := h.exceptions[string(lower[1:n+1])]; ok {
		return points
	}

	gaps := make([]int, len(lower)+1)
	for i := range lower {
		h.patterns.prefixes(lower[i:], func(values []int) {
			for j, v := range values {
				gaps[i+j] = max(gaps[i+j], v)
			}
		})
	}
	var points []int
	for r := leftMin; r <= n-rightMin; r++ {
		// gaps is offset by the leading dot
		if gaps[r+1]%2 == 1 {
			points = append(points, r)
		}
	}
	return points
}

// Hyphenate inserts soft hyphens into the words of s. A nil Hyphenator
// returns s unchanged.
func (h *Hyphenator) Hyphenate(s string) string {
	if h == nil {
		return s
	}
	return h.hyphenate(s, SoftHyphen)
}

func (h *Hyphenator) hyphenate(s, hyphen string) string {
	var (
		out   strings.Builder
		start = -1
	)
	out.Grow(len(s) + len(s)/4)
	flush := func(end int) {
		word := s[start:end]
		points := h.Points(word)
		n := 0
		for _, r := range word {
			if len(points) > 0 && points[0] == n {
				out.WriteString(hyphen)
				points = points[1:]
			}
			out.WriteRune(r)
			n++
		}
		start = -1
	}
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		out.WriteRune(r)
	}
	if start >= 0 {
		flush(len(s))
	}
	return out.String()
}

// Hyphenators loads dictionaries named hyph-<lang>.pat.txt (optionally
// gzipped, with hyph-<lang>.hyp.txt exceptions) from a file system and
// keeps them per language.
type Hyphenators struct {
	log   *zap.Logger
	fsys  fs.FS
	cache map[string]*Hyphenator
}

// NewHyphenators returns a loader reading from fsys. A nil fsys disables
// hyphenation.
func NewHyphenators(fsys fs.FS, log *zap.Logger) *Hyphenators {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hyphenators{log: log.Named("hyphenation"), fsys: fsys, cache: make(map[string]*Hyphenator)}
}

// For returns the hyphenator for lang or nil when there is no dictionary.
func (hs *Hyphenators) For(lang language.Tag) *Hyphenator {
	if hs == nil || hs.fsys == nil || lang == language.Und {
		return nil
	}
	key := lang.String()
	if h, ok := hs.cache[key]; ok {
		return h
	}
	h := hs.load(lang)
	hs.cache[key] = h
	return h
}

func (hs *Hyphenators) load(lang language.Tag) *Hyphenator {
	var candidates []string
	name := strings.ToLower(lang.String())
	candidates = append(candidates, name)
	if mapped, ok := langMap[name]; ok {
		candidates = append(candidates, mapped)
	}
	if base, confidence := lang.Base(); confidence != language.No {
		b := strings.ToLower(base.String())
		candidates = append(candidates, b)
		if mapped, ok := langMap[b]; ok {
			candidates = append(candidates, mapped)
		}
	}

	for _, name := range candidates {
		patterns, err := hs.readDictionary(name, "pat")
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				hs.log.Warn("Unable to read hyphenation patterns", zap.String("name", name), zap.Error(err))
			}
			continue
		}
		exceptions, err := hs.readDictionary(name, "hyp")
		if err != nil {
			hs.log.Debug("No hyphenation exceptions", zap.String("name", name))
			exceptions = ""
		}
		h, err := NewHyphenator(name, strings.NewReader(patterns), strings.NewReader(exceptions))
		if err != nil {
			hs.log.Warn("Unable to load hyphenation dictionary", zap.String("name", name), zap.Error(err))
			continue
		}
		hs.log.Debug("Hyphenation dictionary loaded", zap.Stringer("lang", lang), zap.String("name", name))
		return h
	}
	hs.log.Warn("Unable to find suitable hyphenation dictionary, turning off hyphenation", zap.Stringer("language", lang))
	return nil
}

func (hs *Hyphenators) readDictionary(name, suffix string) (string, error) {
	base := fmt.Sprintf("hyph-%s.%s.txt", name, suffix)
	if data, err := fs.ReadFile(hs.fsys, base); err == nil {
		return string(data), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	f, err := hs.fsys.Open(base + ".gz")
	if err != nil {
		return "", err
	}
	defer f.Close()
	r, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
