package moderation

import (
	"regexp"
	"strings"

	"lexassist/models"
)

// Categories screened for.
const (
	CategorySelfHarm       = "self_harm"
	CategoryViolence       = "violence"
	CategoryPII            = "pii"
	CategoryIllegalRequest = "illegal_request"
	CategoryProfanity      = "profanity"
)

type rule struct {
	category string
	severity string
	patterns []*regexp.Regexp
	// check, when set, must also accept the match.
	check func(match string) bool
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

var (
	ssnPattern  = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardPattern = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
)

// violentAct is a violent verb aimed at a person. Violence is only screened as
// the writer's own intent; questions about violence done by or to others are
// ordinary legal questions.
const violentAct = `(kill|murder|shoot|stab|strangle|poison)\s+` +
	`(him|her|them|you|someone|somebody|everyone|` +
	`my\s+(husband|wife|ex|boss|neighbou?r|landlord|tenant|partner|roommate|father|mother|dad|mom|brother|sister|son|daughter|child|kids?))\b`

var rules = []rule{
	{
		category: CategorySelfHarm,
		severity: models.SeverityHigh,
		patterns: compile(
			`\b(kill|hurt|harm|cut)\s+myself\b`,
			`\bsuicid(e|al)\b`,
			`\bend(ing)?\s+my\s+(own\s+)?life\b`,
			`\bself[- ]harm`,
			`\bwant\s+to\s+die\b`,
		),
	},
	{
		category: CategoryViolence,
		severity: models.SeverityHigh,
		patterns: compile(
			`\bi\s*(am|['’]m)\s+(going\s+to|gonna|planning\s+to|about\s+to)\s+`+violentAct,
			`\bi\s+(want|plan|intend|mean)\s+to\s+`+violentAct,
			`\bi(\s+will|['’]ll)\s+`+violentAct,
			`\bhow\s+(do\s+i|to|can\s+i|should\s+i)\s+`+violentAct,
			`\bhow\s+(do\s+i|to|can\s+i)\s+(make|build)\s+an?\s+(bomb|explosive|pipe\s*bomb)\b`,
			`\bi(\s+will|['’]ll|\s*(am|['’]m)\s+going\s+to)\s+(beat|hurt)\s+(him|her|them)\s+(up|badly)\b`,
		),
	},
	{
		category: CategoryPII,
		severity: models.SeverityMedium,
		patterns: []*regexp.Regexp{ssnPattern},
	},
	{
		category: CategoryPII,
		severity: models.SeverityMedium,
		patterns: []*regexp.Regexp{cardPattern},
		check:    luhnValid,
	},
	{
		category: CategoryIllegalRequest,
		severity: models.SeverityMedium,
		patterns: compile(
			`\b(evade|evading|avoid|avoiding|escape|outrun|hide\s+from)\s+(the\s+)?(police|cops|arrest|law\s+enforcement|a\s+warrant)\b`,
			`\blaunder(ing)?\s+(the\s+|my\s+)?(money|cash|funds|proceeds)\b`,
			`\b(forge|forging|fake|faking|falsify|falsifying)\s+(a\s+|an\s+|the\s+|my\s+)?(document|signature|passport|id|license|will|deed|check|cheque|prescription)s?\b`,
			`\bhide\s+(my\s+)?(assets|income|money)\s+from\s+(the\s+)?(irs|court|tax|creditors|my\s+spouse)\b`,
			`\b(destroy|tamper\s+with)\s+(the\s+)?evidence\b`,
		),
	},
	{
		category: CategoryProfanity,
		severity: models.SeverityLow,
		patterns: compile(
			`\b(fuck\w*|shit\w*|bitch\w*|asshole\w*|bastard\w*|cunt\w*|motherfuck\w*)\b`,
		),
	},
}

// luhnValid reports whether the digits in s pass the Luhn checksum.
func luhnValid(s string) bool {
	var digits []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Redact masks SSNs and card numbers.
func Redact(text string) string {
	text = ssnPattern.ReplaceAllString(text, "[redacted-ssn]")
	return cardPattern.ReplaceAllStringFunc(text, func(m string) string {
		if luhnValid(m) {
			return "[redacted-card]"
		}
		return m
	})
}

// Result is the outcome of screening one text.
type Result struct {
	Flagged    bool     `json:"flagged"`
	Severity   string   `json:"severity,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Matches    []string `json:"-"`
}

// Blocking reports whether the content must not be processed further.
func (r Result) Blocking() bool {
	return r.Severity == models.SeverityHigh
}

// Screen runs every rule over text. The highest matching severity wins.
func Screen(text string) Result {
	var res Result
	seen := map[string]bool{}
	for _, rl := range rules {
		for _, p := range rl.patterns {
			hit := false
			for _, m := range p.FindAllString(text, -1) {
				if rl.check != nil && !rl.check(m) {
					continue
				}
				hit = true
				res.Matches = append(res.Matches, strings.TrimSpace(m))
			}
			if !hit {
				continue
			}
			res.Flagged = true
			if !seen[rl.category] {
				seen[rl.category] = true
				res.Categories = append(res.Categories, rl.category)
			}
			if models.SeverityRank(rl.severity) > models.SeverityRank(res.Severity) {
				res.Severity = rl.severity
			}
		}
	}
	return res
}
