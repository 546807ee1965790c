package faq

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"lexassist/models"
)

// Weights of the confidence score.
const (
	selfReportedWeight  = 0.4
	defaultSelfReported = 0.5
	overlapWeight       = 0.3
	baseScore           = 0.05
	hedgePenalty        = 0.05
	maxHedgePenalty     = 0.25
	citationBonus       = 0.05
	maxCitationBonus    = 0.15
	lengthInBand        = 0.1
	lengthTooLong       = 0.05
	minAnswerWords      = 40
	maxAnswerWords      = 400
)

var confidenceLine = regexp.MustCompile(`(?im)^\s*\**confidence\**\s*[:=]\s*([0-9]*\.?[0-9]+)\s*(%?)\s*$`)

var hedgePatterns = compileHedges(
	"it depends",
	"not sure",
	"unclear",
	"possibly",
	"might",
	"could potentially",
	"i think",
	"i believe",
	"hard to say",
	"cannot be certain",
	"varies by",
	"may or may not",
)

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`§+\s*\d+`),
	regexp.MustCompile(`(?i)\b(?:section|sec\.|article|art\.|rule)\s+\d+[a-z]?(?:\(\w+\))*`),
	regexp.MustCompile(`\b\d+\s+U\.S\.C\.?\s*§*\s*\d+`),
	regexp.MustCompile(`\b[A-Z][A-Za-z.'&-]+\s+v\.\s+[A-Z][A-Za-z.'&-]+`),
	regexp.MustCompile(`\b\d+\s+(?:U\.S\.|S\.\s?Ct\.|F\.\s?(?:2d|3d|4th)|F\.\s?Supp\.)\s+\d+`),
}

var wordRe = regexp.MustCompile(`[a-z][a-z'-]+`)

var stopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true, "being": true,
	"could": true, "does": true, "from": true, "have": true, "into": true, "just": true,
	"legal": true, "like": true, "more": true, "must": true, "only": true, "other": true,
	"should": true, "some": true, "than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "they": true, "this": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "will": true, "with": true, "would": true,
	"your": true, "can't": true, "don't": true, "doesn't": true,
}

// ExtractConfidence removes the model's trailing "CONFIDENCE: x" line and
// returns it as a value in [0,1]. Percentages and 0-10 scales are accepted.
func ExtractConfidence(raw string) (answer string, value float64, ok bool) {
	locs := confidenceLine.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(raw), 0, false
	}
	last := locs[len(locs)-1]
	v, err := strconv.ParseFloat(raw[last[2]:last[3]], 64)
	answer = strings.TrimSpace(raw[:last[0]] + raw[last[1]:])
	if err != nil {
		return answer, 0, false
	}
	switch {
	case last[5] > last[4] || v > 10:
		v /= 100
	case v > 1:
		v /= 10
	}
	return answer, clamp01(v), true
}

// ScoreConfidence rates a drafted answer in [0,1].
func ScoreConfidence(question, answer string, selfReported float64, reported bool) (float64, models.ConfidenceSignals) {
	if !reported {
		selfReported = defaultSelfReported
	}
	lower := strings.ToLower(answer)
	sig := models.ConfidenceSignals{
		SelfReported: clamp01(selfReported),
		Hedges:       countHedges(lower),
		Citations:    countCitations(answer),
		Overlap:      keywordOverlap(question, lower),
		Words:        len(strings.Fields(answer)),
	}

	score := baseScore + selfReportedWeight*sig.SelfReported + overlapWeight*sig.Overlap
	score -= math.Min(float64(sig.Hedges)*hedgePenalty, maxHedgePenalty)
	score += math.Min(float64(sig.Citations)*citationBonus, maxCitationBonus)
	switch {
	case sig.Words >= minAnswerWords && sig.Words <= maxAnswerWords:
		score += lengthInBand
	case sig.Words > maxAnswerWords:
		score += lengthTooLong
	}
	return math.Round(clamp01(score)*1000) / 1000, sig
}

func compileHedges(phrases ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, h := range phrases {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(h) + `\b`)
	}
	return out
}

func countHedges(lower string) int {
	n := 0
	for _, p := range hedgePatterns {
		n += len(p.FindAllStringIndex(lower, -1))
	}
	return n
}

func countCitations(answer string) int {
	n := 0
	for _, p := range citationPatterns {
		n += len(p.FindAllStringIndex(answer, -1))
	}
	return n
}

func keywords(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if len(w) >= 4 && !stopwords[w] {
			out[w] = true
		}
	}
	return out
}

// keywordOverlap is the share of the question's keywords found in the answer.
func keywordOverlap(question, lowerAnswer string) float64 {
	q := keywords(question)
	if len(q) == 0 {
		return 0
	}
	a := keywords(lowerAnswer)
	hit := 0
	for w := range q {
		if a[w] {
			hit++
		}
	}
	return math.Round(float64(hit)/float64(len(q))*1000) / 1000
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
