// Package leetcode turns what the browser sees on a problem page (its URL,
// difficulty badge and topic tags) into tracker values.
package leetcode

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

// Host is the only site whose URLs are recognized.
const Host = "leetcode.com"

// ParseProblemSlug extracts the slug from a problem page URL such as
// https://leetcode.com/problems/two-sum/description/. The slug is returned as it
// appears in the path: casing and percent-escapes are kept. The host matches
// case-insensitively. It returns false for any other host, any path that does not
// start with /problems/<slug>, and anything that is not an absolute URL.
func ParseProblemSlug(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !isHost(u) {
		return "", false
	}
	path := u.EscapedPath()
	if !strings.HasPrefix(path, "/problems/") {
		return "", false
	}

	parts := slices.DeleteFunc(strings.Split(path, "/"), func(s string) bool { return s == "" })
	if len(parts) < 2 || parts[0] != "problems" {
		return "", false
	}
	return parts[1], true
}

// IsSiteURL reports whether rawURL points anywhere on the site.
func IsSiteURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	return err == nil && isHost(u)
}

func isHost(u *url.URL) bool {
	return strings.EqualFold(u.Hostname(), Host)
}

// ProblemURL returns the canonical problem page for a slug as returned by
// ParseProblemSlug. The slug is already path-escaped and is used verbatim.
func ProblemURL(slug string) string {
	return "https://" + Host + "/problems/" + slug + "/"
}

// SlugToTitle converts "two-sum" to "Two Sum": split on hyphens, upper-case the
// first letter of each word, join with spaces. The rest of each word is kept.
func SlugToTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizeTag maps a topic tag as shown on the page to the tracker's wording.
func NormalizeTag(text string) domain.Tag {
	text = strings.TrimSpace(text)
	if text == "Dynamic Programming" {
		return domain.TagDynamic
	}
	return domain.Tag(text)
}

// ParseDifficulty accepts exactly "Easy", "Medium" or "Hard" (surrounding
// whitespace ignored).
func ParseDifficulty(text string) (domain.Difficulty, bool) {
	d := domain.Difficulty(strings.TrimSpace(text))
	if !d.IsValid() {
		return "", false
	}
	return d, true
}

// ParsePageInfo builds PageInfo from the scraped difficulty badge and topic tags.
// An unrecognized difficulty leaves Difficulty empty. Tags are normalized and
// de-duplicated; tags outside the vocabulary are returned in dropped.
func ParsePageInfo(difficultyText string, tagTexts []string) (info domain.PageInfo, dropped []string) {
	info.Difficulty, _ = ParseDifficulty(difficultyText)
	info.Tags = []domain.Tag{}

	for _, text := range tagTexts {
		tag := NormalizeTag(text)
		switch {
		case tag == "":
			continue
		case !tag.IsValid():
			dropped = append(dropped, string(tag))
		case !slices.Contains(info.Tags, tag):
			info.Tags = append(info.Tags, tag)
		}
	}
	return info, dropped
}
