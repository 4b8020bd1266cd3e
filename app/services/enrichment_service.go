package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// commonFemaleNames gives a low-confidence gender signal when the bio
// says nothing
var commonFemaleNames = map[string]bool{
	"sarah": true, "jennifer": true, "lisa": true, "jessica": true,
	"michelle": true, "amanda": true, "stephanie": true, "nicole": true,
	"melissa": true, "elizabeth": true, "heather": true, "amy": true,
	"anna": true, "angela": true, "rebecca": true, "laura": true,
	"karen": true, "christine": true, "catherine": true, "andrea": true,
	"susan": true, "rachel": true, "mary": true, "donna": true,
	"carol": true, "sandra": true, "diane": true, "pamela": true,
	"sharon": true, "kelly": true, "deborah": true, "julie": true,
	"kim": true, "tammy": true, "tracy": true, "tina": true,
	"wendy": true, "cheryl": true, "brenda": true, "denise": true,
	"teresa": true, "maria": true, "linda": true, "barbara": true,
	"nancy": true, "betty": true, "margaret": true, "patricia": true,
	"dorothy": true, "ruth": true, "helen": true, "janet": true,
	"debra": true, "carolyn": true, "cynthia": true, "christina": true,
	"ashley": true, "emily": true, "kimberly": true, "megan": true,
	"brittany": true, "samantha": true, "danielle": true, "natalie": true,
	"kathleen": true, "victoria": true, "vanessa": true, "jacqueline": true,
	"holly": true, "jill": true, "amber": true, "allison": true,
	"erin": true, "april": true, "katie": true, "kate": true,
	"lauren": true, "hannah": true, "abigail": true, "alexis": true,
	"courtney": true, "brooke": true, "dawn": true, "stacey": true,
	"tiffany": true, "crystal": true, "robin": true, "shannon": true,
	"tamara": true, "colleen": true, "leslie": true, "jenn": true,
	"jen": true, "liz": true, "sue": true, "becky": true,
	"steph": true, "nikki": true, "manda": true, "missy": true,
}

// femaleIndicators are bio keywords treated as a female signal
var femaleIndicators = []string{
	"mom", "mother", "mama", "mum", "wife", "she/her",
	"girl", "woman", "women", "queen", "goddess", "lady",
	"feminine", "sister", "daughter", "grandma", "grandmother",
	"auntie", "aunt",
}

// ageIndicator pairs an age range with the bio keywords that suggest it.
// Checked in order, first match wins.
type ageIndicator struct {
	Range    string
	Keywords []string
}

var ageIndicators = []ageIndicator{
	{"40-49", []string{
		"in my 40s", "40s", "over 40", "forty", "born 198",
		"born in the 80s", "gen x", "gen-x",
	}},
	{"45-54", []string{
		"born 197", "born in the 70s", "midlife", "middle age",
		"mom of teens", "teenage kids",
	}},
	{"50-59", []string{
		"in my 50s", "50s", "over 50", "fifty", "born 196",
		"born in the 60s", "empty nester", "grandma", "grandmother",
		"nana", "grandkids",
	}},
	{"55-60", []string{
		"born 196", "late 50s", "almost 60", "approaching 60",
	}},
}

// Explicit-age patterns, ordered from strongest to weakest signal
var (
	bornYearPattern  = regexp.MustCompile(`born\s*(?:in\s*)?(\d{4})`)
	statedAgePattern = regexp.MustCompile(`(?:age\s*|aged?\s*|i'?m\s+)(\d{2})`)
	atAgePattern     = regexp.MustCompile(`(?:at\s+)(\d{2})(?:\s+years|\s+and)`)
	yearOldPattern   = regexp.MustCompile(`(\d{2})[\s-]*year[\s-]*old`)
	classOfPattern   = regexp.MustCompile(`class\s+of\s+'?((?:19|20)\d{2})`)
	estYearPattern   = regexp.MustCompile(`(?:est\.?\s*|since\s+)(19[67]\d)`)
	pipeAgePattern   = regexp.MustCompile(`\|\s*(\d{2})(?:\s*\||\s*y/?o)`)
)

// graduationAge assumed when inferring birth year from "class of 19XX"
const graduationAge = 18

// Demographics is the combined demographic estimate for one creator
type Demographics struct {
	Gender           string
	GenderConfidence string
	AgeRange         string
	AgeConfidence    string
}

// EnrichmentService infers age and gender from bio text and merges the
// result with source-supplied demographic data
type EnrichmentService struct {
	now func() time.Time
}

// NewEnrichmentService creates an enrichment service using the real clock
func NewEnrichmentService() *EnrichmentService {
	return &EnrichmentService{now: utils.UTCNow}
}

// NewEnrichmentServiceAt creates an enrichment service with a fixed
// clock, for deterministic age-from-birth-year inference
func NewEnrichmentServiceAt(now func() time.Time) *EnrichmentService {
	return &EnrichmentService{now: now}
}

// bucketForAge collapses an accepted age into its 5-year band
func bucketForAge(age int) string {
	start := (age / 5) * 5
	return fmt.Sprintf("%d-%d", start, start+4)
}

// inTargetBand is the 40-60 acceptance band every inferred age must fall in
func inTargetBand(age int) bool {
	return age >= 40 && age <= 60
}

// InferAgeRange extracts an estimated age range from bio text.
// Returns ("", "low") when nothing usable is found.
func (s *EnrichmentService) InferAgeRange(bio string) (string, string) {
	if bio == "" {
		return "", models.ConfidenceLow
	}

	bioLower := strings.ToLower(bio)
	currentYear := s.now().Year()

	if m := bornYearPattern.FindStringSubmatch(bioLower); m != nil {
		birthYear, _ := strconv.Atoi(m[1])
		if age := currentYear - birthYear; inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceHigh
		}
	}

	if m := statedAgePattern.FindStringSubmatch(bioLower); m != nil {
		if age, _ := strconv.Atoi(m[1]); inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceHigh
		}
	}

	if m := atAgePattern.FindStringSubmatch(bioLower); m != nil {
		if age, _ := strconv.Atoi(m[1]); inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceHigh
		}
	}

	if m := yearOldPattern.FindStringSubmatch(bioLower); m != nil {
		if age, _ := strconv.Atoi(m[1]); inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceHigh
		}
	}

	if m := classOfPattern.FindStringSubmatch(bioLower); m != nil {
		gradYear, _ := strconv.Atoi(m[1])
		if age := currentYear - (gradYear - graduationAge); inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceMedium
		}
	}

	if m := estYearPattern.FindStringSubmatch(bioLower); m != nil {
		birthYear, _ := strconv.Atoi(m[1])
		if age := currentYear - birthYear; inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceMedium
		}
	}

	if m := pipeAgePattern.FindStringSubmatch(bioLower); m != nil {
		if age, _ := strconv.Atoi(m[1]); inTargetBand(age) {
			return bucketForAge(age), models.ConfidenceHigh
		}
	}

	for _, indicator := range ageIndicators {
		for _, kw := range indicator.Keywords {
			if strings.Contains(bioLower, kw) {
				return indicator.Range, models.ConfidenceMedium
			}
		}
	}

	return "", models.ConfidenceLow
}

// InferGender estimates gender from bio keywords, falling back to a
// common-female-name check on the first name. Only female signals exist;
// anything else stays unknown.
func (s *EnrichmentService) InferGender(bio, name string) (string, string) {
	if bio == "" && name == "" {
		return "", models.ConfidenceLow
	}

	bioLower := strings.ToLower(bio)
	matches := 0
	for _, kw := range femaleIndicators {
		if strings.Contains(bioLower, kw) {
			matches++
		}
	}

	if matches >= 2 {
		return "female", models.ConfidenceHigh
	}
	if matches == 1 {
		return "female", models.ConfidenceMedium
	}

	if fields := strings.Fields(name); len(fields) > 0 {
		if commonFemaleNames[strings.ToLower(fields[0])] {
			return "female", models.ConfidenceLow
		}
	}

	return "", models.ConfidenceLow
}

// Enrich combines source-supplied demographics with bio inference.
// Source values win outright and carry high confidence; inference only
// fills the gaps.
func (s *EnrichmentService) Enrich(bio, apiGender, apiAgeRange, name string) Demographics {
	result := Demographics{
		Gender:           apiGender,
		GenderConfidence: models.ConfidenceHigh,
		AgeRange:         apiAgeRange,
		AgeConfidence:    models.ConfidenceHigh,
	}

	if apiGender == "" {
		result.Gender, result.GenderConfidence = s.InferGender(bio, name)
	}
	if apiAgeRange == "" {
		result.AgeRange, result.AgeConfidence = s.InferAgeRange(bio)
	}

	return result
}
