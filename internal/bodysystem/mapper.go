package bodysystem

import "strings"

// entry maps one body-system code to its text patterns and KCD/ICD code
// prefixes. Table order decides ties: the first matching entry wins, so
// e.g. liver disease lands under digestive.
type entry struct {
	code     string
	patterns []string
	prefixes []string
}

// The table is a static asset; extend it without touching callers.
var table = []entry{
	{
		code:     "cancer",
		patterns: []string{"암", "종양", "악성", "신생물", "백혈병", "림프종", "cancer", "carcinoma", "tumor", "malignant", "neoplasm", "leukemia", "lymphoma"},
		prefixes: []string{"C", "D0", "D1", "D2", "D3", "D4"},
	},
	{
		code:     "cerebrovascular",
		patterns: []string{"뇌졸중", "뇌경색", "뇌출혈", "지주막하", "뇌혈관", "stroke", "cerebral infarction", "cerebral hemorrhage"},
		prefixes: []string{"I6"},
	},
	{
		code:     "cardiovascular",
		patterns: []string{"심장", "협심증", "심근경색", "부정맥", "심부전", "고혈압", "판막", "angina", "myocardial", "arrhythmia", "heart failure", "hypertension"},
		prefixes: []string{"I0", "I1", "I2", "I3", "I4", "I5"},
	},
	{
		code:     "endocrine",
		patterns: []string{"당뇨", "갑상선", "고지혈증", "이상지질혈증", "내분비", "diabetes", "thyroid", "dyslipidemia"},
		prefixes: []string{"E"},
	},
	{
		code:     "respiratory",
		patterns: []string{"폐렴", "천식", "만성폐쇄성", "기관지", "폐결핵", "호흡기", "pneumonia", "asthma", "copd", "bronchitis", "tuberculosis"},
		prefixes: []string{"J"},
	},
	{
		code:     "digestive",
		patterns: []string{"위염", "위궤양", "간염", "간경화", "지방간", "담석", "췌장염", "대장", "십이지장", "gastritis", "ulcer", "hepatitis", "cirrhosis", "pancreatitis", "colitis"},
		prefixes: []string{"K"},
	},
	{
		code:     "musculoskeletal",
		patterns: []string{"디스크", "추간판", "골절", "관절염", "척추", "인대", "골다공증", "fracture", "arthritis", "disc", "osteoporosis", "ligament"},
		prefixes: []string{"M", "S"},
	},
	{
		code:     "renal_urinary",
		patterns: []string{"신부전", "신장", "요로", "방광", "전립선", "renal", "kidney", "urinary", "bladder", "prostate"},
		prefixes: []string{"N"},
	},
	{
		code:     "mental_neuro",
		patterns: []string{"우울증", "불안장애", "불면증", "치매", "뇌전증", "편두통", "depression", "anxiety", "insomnia", "dementia", "epilepsy", "migraine"},
		prefixes: []string{"F", "G"},
	},
	{
		code:     "eye_ent",
		patterns: []string{"백내장", "녹내장", "중이염", "부비동염", "난청", "cataract", "glaucoma", "otitis", "sinusitis"},
		prefixes: []string{"H"},
	},
}

// Other is returned when a diagnosis matches no table entry
const Other = "other"

// Map classifies a diagnosis into a body-system code by text patterns
// and diagnostic-code prefixes. Pure, stateless, first match wins.
func Map(text string, codes []string) string {
	lower := strings.ToLower(text)
	for _, e := range table {
		for _, p := range e.patterns {
			if p != "" && strings.Contains(lower, p) {
				return e.code
			}
		}
		for _, code := range codes {
			upper := strings.ToUpper(strings.TrimSpace(code))
			for _, prefix := range e.prefixes {
				if strings.HasPrefix(upper, prefix) {
					return e.code
				}
			}
		}
	}
	return Other
}

// Similarity computes the Jaccard similarity of two body-system code
// sets: intersection size over union size. Returns 0.0 when either set
// is empty. Symmetric; Similarity(A, A) == 1.0 for non-empty A.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
