// ABOUTME: Sort key strategies used to order playlist entries
// ABOUTME: Default strategy romanizes Han characters to pinyin so mixed-script names sort together

package library

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/unicode/norm"
)

// SortKeyFunc maps a file name to the string it is ordered by.
// Keys are used purely for ordering, never for display or storage.
type SortKeyFunc func(name string) string

// pinyinArgs converts without tones and keeps every non-Han rune as-is
var pinyinArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Normal
	a.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}

	return a
}()

// PinyinKey transliterates Han characters to tone-less pinyin and leaves
// everything else untouched, so "啊.mp3" sorts as "a.mp3".
// Names are NFC-normalized first so decomposed file names (as returned by
// some file systems) produce the same key as their composed form.
func PinyinKey(name string) string {
	return strings.Join(pinyin.LazyPinyin(norm.NFC.String(name), pinyinArgs), "")
}

// PlainKey orders by the NFC-normalized name without transliteration
func PlainKey(name string) string {
	return norm.NFC.String(name)
}
