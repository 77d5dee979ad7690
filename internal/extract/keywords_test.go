package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords_FrequencyOrdering(t *testing.T) {
	text := "ransomware ransomware ransomware phishing phishing botnet"

	keywords := Keywords(text, MaxKeywords)

	assert.Equal(t, []string{"ransomware", "phishing", "botnet"}, keywords)
}

func TestKeywords_Deterministic(t *testing.T) {
	text := "malware exploit payload exploit malware dropper payload malware"

	first := Keywords(text, MaxKeywords)
	second := Keywords(text, MaxKeywords)

	assert.Equal(t, first, second)
}

func TestKeywords_CVEIdentifiersOutrankOrdinaryTokens(t *testing.T) {
	// Five CVE occurrences score 5 each; any token appearing fewer
	// than 26 times must rank below the identifier.
	text := strings.Repeat("CVE-2023-12345 ", 5) + strings.Repeat("exploit ", 5)

	keywords := Keywords(text, MaxKeywords)

	assert.Equal(t, "CVE-2023-12345", keywords[0])
}

func TestKeywords_CVEMatchingIsCaseInsensitive(t *testing.T) {
	keywords := Keywords("patched cve-2021-44228 in production", MaxKeywords)

	assert.Contains(t, keywords, "cve-2021-44228")
}

func TestKeywords_StopwordsDiscarded(t *testing.T) {
	keywords := Keywords("the attacker and the victim will have been there", MaxKeywords)

	assert.Contains(t, keywords, "attacker")
	assert.Contains(t, keywords, "victim")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "and")
	assert.NotContains(t, keywords, "will")
	assert.NotContains(t, keywords, "been")
}

func TestKeywords_TokenRules(t *testing.T) {
	// Tokens must be at least three characters and start with a letter.
	keywords := Keywords("ab c99 x 2024 sha256 log4j", MaxKeywords)

	assert.NotContains(t, keywords, "ab")
	assert.NotContains(t, keywords, "2024")
	assert.Contains(t, keywords, "c99")
	assert.Contains(t, keywords, "sha256")
	assert.Contains(t, keywords, "log4j")
}

func TestKeywords_CaseFolded(t *testing.T) {
	keywords := Keywords("Ransomware RANSOMWARE ransomware", MaxKeywords)

	assert.Equal(t, []string{"ransomware"}, keywords)
}

func TestKeywords_CapsAtMax(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima"

	keywords := Keywords(text, 10)

	assert.Len(t, keywords, 10)
}

func TestKeywords_TiesKeepFirstEncounteredOrder(t *testing.T) {
	keywords := Keywords("zebra apple mango", MaxKeywords)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, keywords)
}

func TestKeywords_EmptyText(t *testing.T) {
	assert.Empty(t, Keywords("", MaxKeywords))
}
