package features

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"
)

// classCacheSize bounds the token-class memo
const classCacheSize = 8192

// Normalize returns the NFC-normalized, lowercased form of a token
func Normalize(token string) string {
	return strings.ToLower(norm.NFC.String(token))
}

// TokenGenerator emits the normalized token: w=<token>
type TokenGenerator struct{}

// NewTokenGenerator creates a token identity extractor
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

func (g *TokenGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	return append(dst, "w="+Normalize(tokens[index]))
}

// TokenClassGenerator emits the coarse shape of a token: wc=<class>, and
// optionally the token joined with its class: w&c=<token>,<class>
type TokenClassGenerator struct {
	wordAndClass bool
	classes      *lru.Cache[string, string]
}

// NewTokenClassGenerator creates a token shape extractor
func NewTokenClassGenerator(wordAndClass bool) *TokenClassGenerator {
	// lru.New only fails on a non-positive size
	classes, _ := lru.New[string, string](classCacheSize)
	return &TokenClassGenerator{wordAndClass: wordAndClass, classes: classes}
}

func (g *TokenClassGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	token := tokens[index]
	class := g.class(token)
	dst = append(dst, "wc="+class)
	if g.wordAndClass {
		dst = append(dst, "w&c="+Normalize(token)+","+class)
	}
	return dst
}

func (g *TokenClassGenerator) class(token string) string {
	if c, ok := g.classes.Get(token); ok {
		return c
	}
	c := TokenClass(token)
	g.classes.Add(token, c)
	return c
}

// Token classes
const (
	ClassLower       = "lc"
	ClassTwoDigit    = "2d"
	ClassFourDigit   = "4d"
	ClassAlphaNum    = "an"
	ClassDigitDash   = "dd"
	ClassDigitSlash  = "ds"
	ClassDigitComma  = "dc"
	ClassDigitPeriod = "dp"
	ClassNumber      = "num"
	ClassSingleCap   = "sc"
	ClassAllCaps     = "ac"
	ClassInitialCap  = "ic"
	ClassOther       = "other"
)

type shape struct {
	runes   int
	letters int
	digits  int
	upper   int
	lower   int

	hyphen, slash, comma, period bool
	initialUpper                 bool
}

func shapeOf(token string) shape {
	var s shape
	for i, r := range []rune(token) {
		s.runes++
		switch {
		case unicode.IsLetter(r):
			s.letters++
			if unicode.IsUpper(r) {
				s.upper++
				if i == 0 {
					s.initialUpper = true
				}
			} else if unicode.IsLower(r) {
				s.lower++
			}
		case unicode.IsDigit(r):
			s.digits++
		case r == '-':
			s.hyphen = true
		case r == '/':
			s.slash = true
		case r == ',':
			s.comma = true
		case r == '.':
			s.period = true
		}
	}
	return s
}

// TokenClass returns the shape class of a token
func TokenClass(token string) string {
	s := shapeOf(token)
	allDigits := s.runes > 0 && s.digits == s.runes
	allLetters := s.runes > 0 && s.letters == s.runes

	switch {
	case allLetters && s.lower == s.runes:
		return ClassLower
	case allDigits && s.digits == 2:
		return ClassTwoDigit
	case allDigits && s.digits == 4:
		return ClassFourDigit
	case s.digits > 0:
		switch {
		case s.letters > 0:
			return ClassAlphaNum
		case s.hyphen:
			return ClassDigitDash
		case s.slash:
			return ClassDigitSlash
		case s.comma:
			return ClassDigitComma
		case s.period:
			return ClassDigitPeriod
		default:
			return ClassNumber
		}
	case allLetters && s.upper == s.runes && s.runes == 1:
		return ClassSingleCap
	case allLetters && s.upper == s.runes:
		return ClassAllCaps
	case s.initialUpper:
		return ClassInitialCap
	default:
		return ClassOther
	}
}
