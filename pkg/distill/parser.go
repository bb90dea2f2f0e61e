package distill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/triage-ai/triage-guard/pkg/guard"
)

// ErrUnparsable marks teacher output that does not contain all three tagged
// judgments. Callers exclude the sample; there is no default verdict.
var ErrUnparsable = fmt.Errorf("unparsable teacher output")

// The teacher model closes its tags with one or more literal backslashes
// before the tag name, and capitalization drifts between checkpoints, so
// matching happens on lowered text.
var (
	maliciousPattern = regexp.MustCompile(`<malicious_user_request>\s*(yes|no)\s*<\\+malicious_user_request>`)
	attackedPattern  = regexp.MustCompile(`<being_attacked>\s*(yes|no)\s*<\\+being_attacked>`)
	harmPattern      = regexp.MustCompile(`<harmfulness_rating>\s*([0-9.]+)\s*<\\+harmfulness_rating>`)
)

// TeacherVerdict is a fully parsed teacher judgment plus its fused score.
type TeacherVerdict struct {
	guard.PredictionTriple
	CompositeScore float64
}

// ParseTeacherOutput extracts the three tagged judgments from the teacher's
// free-text response. All-or-nothing: a missing tag, or a harmfulness rating
// outside {0.0, 0.5, 1.0}, fails the whole parse.
func ParseTeacherOutput(text string) (*TeacherVerdict, error) {
	lowered := strings.ToLower(text)

	maliciousMatch := maliciousPattern.FindStringSubmatch(lowered)
	if maliciousMatch == nil {
		return nil, fmt.Errorf("%w: missing malicious_user_request tag", ErrUnparsable)
	}
	attackedMatch := attackedPattern.FindStringSubmatch(lowered)
	if attackedMatch == nil {
		return nil, fmt.Errorf("%w: missing being_attacked tag", ErrUnparsable)
	}
	harmMatch := harmPattern.FindStringSubmatch(lowered)
	if harmMatch == nil {
		return nil, fmt.Errorf("%w: missing harmfulness_rating tag", ErrUnparsable)
	}

	harmfulness, err := strconv.ParseFloat(harmMatch[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad harmfulness rating %q", ErrUnparsable, harmMatch[1])
	}
	if harmfulness != guard.HarmNone && harmfulness != guard.HarmModerate && harmfulness != guard.HarmSevere {
		return nil, fmt.Errorf("%w: harmfulness rating %v outside {0.0, 0.5, 1.0}", ErrUnparsable, harmfulness)
	}

	triple := guard.PredictionTriple{
		Malicious:   maliciousMatch[1],
		Attacked:    attackedMatch[1],
		Harmfulness: harmfulness,
	}
	return &TeacherVerdict{
		PredictionTriple: triple,
		CompositeScore:   guard.CompositeScore(triple),
	}, nil
}
