package presentation

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	keyUngrouped        = "ungrouped_tweaks_group_title"
	keyNoMutableSources = "no_mutable_sources_message"
	keyNoTweaks         = "no_tweaks_message"
	keySummary          = "%d tweaks in %d sections"
)

var (
	cat       = newCatalog()
	supported = []language.Tag{language.English, language.Italian}
	matcher   = language.NewMatcher(supported)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}

	set(language.English, keyUngrouped, "Ungrouped")
	set(language.English, keyNoMutableSources, "No Mutable Configurations Found")
	set(language.English, keyNoTweaks, "No tweaks")
	set(language.English, keySummary, "%d tweaks in %d sections")

	set(language.Italian, keyUngrouped, "Senza gruppo")
	set(language.Italian, keyNoMutableSources, "Nessuna configurazione modificabile trovata")
	set(language.Italian, keyNoTweaks, "Nessun tweak")
	set(language.Italian, keySummary, "%d tweak in %d sezioni")
	return b
}

// Messages returns localized UI strings.
type Messages struct {
	tag language.Tag
	p   *message.Printer
}

// NewMessages picks the best supported language for locale, a BCP 47 tag
// such as "it-IT" or a POSIX locale such as "it_IT.UTF-8". Unknown or empty
// locales fall back to English.
func NewMessages(locale string) Messages {
	locale, _, _ = strings.Cut(locale, ".")
	locale = strings.ReplaceAll(locale, "_", "-")
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return Messages{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the matched language tag.
func (m Messages) Language() language.Tag { return m.tag }

// DefaultGroup is the section title for tweaks without a group.
func (m Messages) DefaultGroup() string { return m.p.Sprintf(keyUngrouped) }

// NoMutableSources is shown when edits cannot be saved anywhere.
func (m Messages) NoMutableSources() string { return m.p.Sprintf(keyNoMutableSources) }

// NoTweaks is shown when there is nothing to list.
func (m Messages) NoTweaks() string { return m.p.Sprintf(keyNoTweaks) }

// Summary reports row and section counts.
func (m Messages) Summary(tweaks, sections int) string {
	return m.p.Sprintf(keySummary, tweaks, sections)
}
