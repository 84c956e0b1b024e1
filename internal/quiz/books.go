package quiz

import (
	"regexp"
	"strings"
)

// Books canonical order (1 = Genesis ... 66 = Revelation)
var Books = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy", "Joshua", "Judges", "Ruth",
	"1 Samuel", "2 Samuel", "1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs", "Ecclesiastes", "Song of Solomon",
	"Isaiah", "Jeremiah", "Lamentations", "Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk", "Zephaniah", "Haggai", "Zechariah",
	"Malachi", "Matthew", "Mark", "Luke", "John", "Acts", "Romans", "1 Corinthians",
	"2 Corinthians", "Galatians", "Ephesians", "Philippians", "Colossians", "1 Thessalonians",
	"2 Thessalonians", "1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John", "Jude", "Revelation",
}

var manualBookAliases = map[string]string{
	"gen": "Genesis", "exod": "Exodus", "lev": "Leviticus", "num": "Numbers",
	"deut": "Deuteronomy", "josh": "Joshua", "judg": "Judges", "psalm": "Psalms",
	"ps": "Psalms", "prov": "Proverbs", "eccl": "Ecclesiastes", "song": "Song of Solomon",
	"sos": "Song of Solomon", "isa": "Isaiah", "jer": "Jeremiah", "lam": "Lamentations",
	"ezek": "Ezekiel", "dan": "Daniel", "hos": "Hosea", "obad": "Obadiah", "hab": "Habakkuk",
	"zech": "Zechariah", "mal": "Malachi", "matt": "Matthew", "rom": "Romans",
	"rev": "Revelation", "1 cor": "1 Corinthians", "2 cor": "2 Corinthians",
	"1 thess": "1 Thessalonians", "2 thess": "2 Thessalonians", "1 tim": "1 Timothy",
	"2 tim": "2 Timothy", "phlm": "Philemon", "1 pet": "1 Peter", "2 pet": "2 Peter",
}

var (
	bookNumbers    = map[string]int{}
	bookAliases    = map[string]string{}
	bookTokenStrip = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRun       = regexp.MustCompile(`\s+`)
	referenceBook  = regexp.MustCompile(`^([1-3]?\s?[A-Za-z]+(?:\s+[A-Za-z]+)*)\s+\d`)
)

func init() {
	for i, book := range Books {
		bookNumbers[book] = i + 1
		bookAliases[normalizeBookToken(book)] = book
		bookAliases[normalizeBookToken(strings.ReplaceAll(book, " ", ""))] = book
	}
	for alias, book := range manualBookAliases {
		bookAliases[normalizeBookToken(alias)] = book
	}
}

func normalizeBookToken(s string) string {
	s = bookTokenStrip.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// ResolveBook alias/약어를 정식 책 이름으로. 모르면 ""
func ResolveBook(raw string) string {
	return bookAliases[normalizeBookToken(raw)]
}

// BookNumber 정경 순서 번호 (없으면 0)
func BookNumber(book string) int {
	return bookNumbers[book]
}

// InferPrimaryBook "Exodus 12:13; John 1:29" -> "Exodus"
func InferPrimaryBook(reference string) string {
	first := strings.TrimSpace(strings.SplitN(reference, ";", 2)[0])
	m := referenceBook.FindStringSubmatch(first)
	if m == nil {
		return ""
	}
	return ResolveBook(m[1])
}
